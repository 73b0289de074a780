// Package main provides the vanify CLI tool for searching Solana vanity keypairs.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/vanify"
	"github.com/complex-gh/vanify/internal/config"
	"github.com/mattn/go-isatty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/term"
	lang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	maxWidth = 72
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	purple     = lipgloss.Color(completeColor("#B15EFF", "135", "5"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd
	foundStyle = baseStyle.
			Foreground(purple).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(1, 2) //nolint:mnd

	cfg    *config.Config
	cfgErr error

	language    string
	wordCount   int
	outputPath  string
	derivePath  string
	prefixes    []string
	substrings  []string
	workers     int
	maxAttempts uint64
	policyName  string
	progress    time.Duration
	verbose     bool

	rootCmd = &cobra.Command{
		Use:   "vanify <target-prefix>",
		Short: "Search for a Solana vanity keypair derived from a seed phrase",
		Long: `Search for a Solana vanity keypair derived from a seed phrase.

Every attempt generates a random BIP39 seed phrase, derives the keypair at
m/44'/501'/0'/0' and compares the lowercase base58 public key with the target
prefix. The search ends when the public key starts with the target.

Shorter prefixes (--prefix) and substrings (--contains) are logged while the
search goes on. Every match is appended to the output file, which is never
truncated. A public key matching several rules is written more than once
unless --policy once is given.

Expected attempts grow about 30-58 times per prefix character.

SECURITY TIP: the output file contains seed phrases and secret keys in plain
text. Keep it on an encrypted disk and delete it once the keys are moved.`,
		Example: `  vanify vk85ua
  vanify vk85ua --prefix vk85 --prefix vk --contains vk85ua --contains vk85
  vanify sol --workers 8 --output sol.txt
  vanify abc --max-attempts 1000000 --policy once
  VANIFY_WORKERS=4 vanify abc`,
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0])
		},
	}

	deriveCmd = &cobra.Command{
		Use:   "derive [seed phrase words...]",
		Short: "Print the record for an existing seed phrase",
		Long: `Print the record block for an existing seed phrase.

The phrase can be passed as arguments or piped on stdin. The keypair is derived
at --path, m/44'/501'/0'/0' by default.`,
		Example: `  vanify derive abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about
  echo "your seed phrase" | vanify derive`,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			if phrase == "" {
				line, err := readLine(os.Stdin)
				if err != nil {
					return err
				}
				phrase = line
			}
			return runDerive(os.Stdout, phrase)
		},
	}

	verifyCmd = &cobra.Command{
		Use:   "verify <file>",
		Short: "Check every record in an output file",
		Long: `Check every record in an output file.

Each record must hold a secret key whose hex and array forms agree, whose
public key matches the "Public key" line and which the seed phrase derives at
--path. The command fails if any record does not pass.`,
		Example:      `  vanify verify vk85ua.txt`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runVerify(os.Stdout, args[0])
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for vanify.

To load completions:

Bash:
  $ source <(vanify completion bash)

Zsh:
  $ vanify completion zsh > "${fpath[1]}/_vanify"

Fish:
  $ vanify completion fish | source

PowerShell:
  PS> vanify completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

func init() {
	cfg, cfgErr = config.Load()
	if cfgErr != nil {
		cfg = &config.Config{}
	}

	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", cfg.Language, "Seed phrase language")
	rootCmd.PersistentFlags().StringVar(&derivePath, "path", cfg.Path, "Derivation path (hardened segments only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", cfg.Verbose, "Log debug output")

	rootCmd.Flags().IntVarP(&wordCount, "words", "w", cfg.Words, "Seed phrase length (12, 15, 18, 21, or 24)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", cfg.Output, "File to append records to (default \"<target-prefix>.txt\")")
	rootCmd.Flags().StringArrayVarP(&prefixes, "prefix", "p", nil, "Shorter prefix to log while searching (repeatable)")
	rootCmd.Flags().StringArrayVarP(&substrings, "contains", "c", nil, "Substring to log when found anywhere in the public key (repeatable)")
	rootCmd.Flags().IntVarP(&workers, "workers", "j", cfg.Workers, "Number of parallel workers")
	rootCmd.Flags().Uint64Var(&maxAttempts, "max-attempts", 0, "Give up after this many attempts (0 searches forever)")
	rootCmd.Flags().StringVar(&policyName, "policy", cfg.Policy, "Records per logged match: grouped, per-rule, or once")
	rootCmd.Flags().DurationVar(&progress, "progress", cfg.Progress, "Progress report interval (0 disables)")

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

// setup reports configuration errors and prepares logging and the wordlist
// shared by every command.
func setup(_ *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	setupLogger(os.Stderr, verbose)
	return setLanguage(language)
}

func setupLogger(w io.Writer, debug bool) {
	log.Logger = zerolog.New(
		zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"},
	).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func runSearch(ctx context.Context, target string) error {
	policy, err := vanify.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = cfg.OutputFor(vanify.Fold(target))
	}

	interval := progress
	if interval <= 0 {
		interval = -1
	}
	expected := vanify.ExpectedAttempts(target)

	search, err := vanify.New(vanify.Options{
		Target:           target,
		Prefixes:         prefixes,
		Substrings:       substrings,
		Policy:           policy,
		OutputPath:       outputPath,
		Words:            wordCount,
		Path:             derivePath,
		Workers:          workers,
		MaxAttempts:      maxAttempts,
		ProgressInterval: interval,
		OnProgress: func(st vanify.Stats) {
			logProgress(st, expected)
		},
		Logger: log.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not configure search: %w", err)
	}

	log.Info().
		Str("target", search.Rules.Target).
		Strs("prefixes", search.Rules.Prefixes).
		Strs("substrings", search.Rules.Substrings).
		Str("policy", search.Rules.Policy.String()).
		Str("output", outputPath).
		Int("workers", max(workers, 1)).
		Float64("expected_attempts", expected).
		Msg("searching")

	found, err := search.Search(ctx)
	if err != nil {
		st := search.Stats()
		log.Debug().
			Uint64("attempts", st.Attempts).
			Uint64("logged", st.Logged).
			Msg("search stopped")
		switch {
		case errors.Is(err, vanify.ErrAttemptsExhausted):
			return fmt.Errorf("no match for %q after %d attempts: %w", target, st.Attempts, err)
		case errors.Is(err, context.Canceled):
			return fmt.Errorf("search interrupted after %d attempts, %d records in %s", st.Attempts, st.Logged, outputPath)
		case vanify.IsPersistError(err):
			return formatError(err)
		}
		return err
	}

	printFound(os.Stdout, found)
	return nil
}

func logProgress(st vanify.Stats, expected float64) {
	ev := log.Info().
		Uint64("attempts", st.Attempts).
		Uint64("logged", st.Logged).
		Str("rate", fmt.Sprintf("%.0f/s", st.KeysPerSec))
	if st.KeysPerSec > 0 && expected > 0 && !math.IsInf(expected, 0) {
		eta := time.Duration(expected / st.KeysPerSec * float64(time.Second))
		ev = ev.Dur("expected", eta.Round(time.Second))
	}
	ev.Msg("progress")
}

// printFound prints the winning keypair. On a terminal it is framed in a
// styled block; otherwise the plain lines are printed so they can be piped.
func printFound(w io.Writer, c vanify.Candidate) {
	lines := strings.Join([]string{
		"Seed phrase: " + c.Mnemonic.String(),
		"Public key: " + c.Address,
		"Secret key: " + c.Keypair.SecretHex(),
	}, "\n")

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		_, _ = fmt.Fprintln(w, lines)
		return
	}

	b := strings.Builder{}
	b.WriteRune('\n')
	renderBlock(&b, foundStyle, getWidth(maxWidth), lines)
	_, _ = io.WriteString(w, b.String())
}

func runDerive(w io.Writer, phrase string) error {
	m, err := vanify.ParseMnemonic(phrase)
	if err != nil {
		return err
	}
	path, err := vanify.ParsePath(derivePath)
	if err != nil {
		return err
	}
	kp, err := vanify.DeriveKeypair(m, path)
	if err != nil {
		return fmt.Errorf("could not derive keypair: %w", err)
	}

	rec := vanify.RecordFor(vanify.Candidate{Mnemonic: m, Keypair: kp, Address: kp.Address()})
	_, err = io.WriteString(w, strings.TrimPrefix(rec.Format(), "\n"))
	return err
}

func runVerify(w io.Writer, file string) error {
	path, err := vanify.ParsePath(derivePath)
	if err != nil {
		return err
	}

	// G304: the records file is chosen by the operator
	f, err := os.Open(file) //nolint:gosec
	if err != nil {
		return fmt.Errorf("could not open %s: %w", file, err)
	}
	defer f.Close() //nolint:errcheck

	records, err := vanify.ParseRecords(f)
	if err != nil {
		return fmt.Errorf("could not parse %s: %w", file, err)
	}

	var bad int
	for i, rec := range records {
		if err := vanify.VerifyRecord(rec, path); err != nil {
			bad++
			log.Error().Err(err).Int("record", i+1).Str("address", rec.PublicKey).Msg("invalid record")
			continue
		}
		log.Debug().Int("record", i+1).Str("address", rec.PublicKey).Msg("ok")
	}

	_, _ = fmt.Fprintf(w, "%d records, %d valid, %d invalid\n", len(records), len(records)-bad, bad)
	if bad > 0 {
		return fmt.Errorf("%d of %d records in %s failed verification", bad, len(records), file)
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("could not read seed phrase: %w", err)
	}
	return "", errors.New("no seed phrase given")
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

// formatError displays err in a styled block when stdout is a terminal and
// returns it so the command exits with a non-zero code.
func formatError(err error) error {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		b := strings.Builder{}
		w := getWidth(maxWidth)

		b.WriteRune('\n')
		renderBlock(&b, errorStyle, w, err.Error())
		b.WriteRune('\n')

		fmt.Print(b.String())
	}
	return err
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}

// setLanguage sets the language of the bip39 mnemonic seed.
func setLanguage(language string) error {
	list := getWordlist(language)
	if list == nil {
		return fmt.Errorf("this language is not supported")
	}
	bip39.SetWordList(list)
	return nil
}

func sanitizeLang(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

var wordLists = map[lang.Tag][]string{
	lang.Chinese:              wordlists.ChineseSimplified,
	lang.SimplifiedChinese:    wordlists.ChineseSimplified,
	lang.TraditionalChinese:   wordlists.ChineseTraditional,
	lang.Czech:                wordlists.Czech,
	lang.AmericanEnglish:      wordlists.English,
	lang.BritishEnglish:       wordlists.English,
	lang.English:              wordlists.English,
	lang.French:               wordlists.French,
	lang.Italian:              wordlists.Italian,
	lang.Japanese:             wordlists.Japanese,
	lang.Korean:               wordlists.Korean,
	lang.Spanish:              wordlists.Spanish,
	lang.EuropeanSpanish:      wordlists.Spanish,
	lang.LatinAmericanSpanish: wordlists.Spanish,
}

func getWordlist(language string) []string {
	language = sanitizeLang(language)
	tag := lang.Make(language)
	en := display.English.Languages() // default language name matcher
	for t := range wordLists {
		if sanitizeLang(en.Name(t)) == language {
			tag = t
			break
		}
	}
	if tag == lang.Und { // Unknown language
		return nil
	}
	base, _ := tag.Base()
	btag := lang.MustParse(base.String())
	wl := wordLists[tag]
	if wl == nil {
		return wordLists[btag]
	}
	return wl
}
