package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/complex-gh/vanify"
	"github.com/matryer/is"
	"github.com/tyler-smith/go-bip39/wordlists"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGetWordlist(t *testing.T) {
	tests := []struct {
		language string
		want     []string
	}{
		{language: "en", want: wordlists.English},
		{language: "english", want: wordlists.English},
		{language: "en-US", want: wordlists.English},
		{language: "es", want: wordlists.Spanish},
		{language: "Japanese", want: wordlists.Japanese},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			is := is.New(t)
			got := getWordlist(tt.language)
			is.True(got != nil)
			is.Equal(got[0], tt.want[0])
		})
	}
}

func TestGetWordlist_Unknown(t *testing.T) {
	is := is.New(t)
	is.True(getWordlist("??") == nil)
}

func TestRunDerive(t *testing.T) {
	is := is.New(t)
	derivePath = vanify.SolanaPath

	var out bytes.Buffer
	is.NoErr(runDerive(&out, testMnemonic))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[0], "Seed phrase: "+testMnemonic)

	addr, err := vanify.DeriveSolanaAddress(testMnemonic)
	is.NoErr(err)
	is.Equal(lines[1], "Public key: "+addr)
	is.Equal(lines[4], vanify.Separator)

	is.True(runDerive(&out, "abandon abandon") != nil)
}

func TestRunVerify(t *testing.T) {
	is := is.New(t)
	derivePath = vanify.SolanaPath

	var block bytes.Buffer
	is.NoErr(runDerive(&block, testMnemonic))

	file := filepath.Join(t.TempDir(), "matches.txt")
	is.NoErr(os.WriteFile(file, []byte("\n"+block.String()+"\n"+block.String()), 0o600))

	var out bytes.Buffer
	is.NoErr(runVerify(&out, file))
	is.Equal(out.String(), "2 records, 2 valid, 0 invalid\n")
}

func TestRunVerify_Invalid(t *testing.T) {
	is := is.New(t)
	derivePath = vanify.SolanaPath

	var block bytes.Buffer
	is.NoErr(runDerive(&block, testMnemonic))
	bad := strings.Replace(block.String(),
		"Seed phrase: "+testMnemonic,
		"Seed phrase: legal winner thank year wave sausage worth useful legal winner thank yellow", 1)

	file := filepath.Join(t.TempDir(), "matches.txt")
	is.NoErr(os.WriteFile(file, []byte(block.String()+bad), 0o600))

	var out bytes.Buffer
	err := runVerify(&out, file)
	is.True(err != nil)
	is.Equal(out.String(), "2 records, 1 valid, 1 invalid\n")
}

func TestRunVerify_MissingFile(t *testing.T) {
	is := is.New(t)
	derivePath = vanify.SolanaPath

	err := runVerify(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.txt"))
	is.True(err != nil)
}

func TestPrintFound_Plain(t *testing.T) {
	is := is.New(t)

	var out bytes.Buffer
	printFound(&out, vanify.Candidate{Mnemonic: vanify.Mnemonic("a b c"), Address: "Addr"})

	is.True(strings.Contains(out.String(), "Seed phrase: a b c\n"))
	is.True(strings.Contains(out.String(), "Public key: Addr\n"))
}

func TestReadLine(t *testing.T) {
	is := is.New(t)

	line, err := readLine(strings.NewReader("  one two  \nthree\n"))
	is.NoErr(err)
	is.Equal(line, "one two")

	_, err = readLine(strings.NewReader(""))
	is.True(err != nil)
}
