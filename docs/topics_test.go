package docs

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/taxfolio"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md loads, and every .md file is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) error = %v", topic, err)
		}
	}
	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error = %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}

	everything, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) error = %v", err)
	}
	for _, topic := range all {
		content, _ := GetTopic(topic)
		if !strings.Contains(everything, content) {
			t.Errorf("GetTopic(*) is missing %q", topic)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(nope) expected an error")
	}
}

// codeBlocks returns the content of the fenced blocks of file in language lang.
func codeBlocks(t *testing.T, file, lang string) []string {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || string(fcb.Language(content)) != lang {
			return ast.WalkContinue, nil
		}
		var b bytes.Buffer
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

func TestLedgerExamples(t *testing.T) {
	blocks := codeBlocks(t, "ledger.md", "json")
	if len(blocks) == 0 {
		t.Fatal("ledger.md has no json example")
	}
	for _, block := range blocks {
		if _, err := taxfolio.DecodeTransactions(strings.NewReader(block)); err != nil {
			t.Errorf("ledger example does not decode: %v\n%s", err, block)
		}
	}
}

func TestPriceHistoryExamples(t *testing.T) {
	for _, block := range codeBlocks(t, "prices.md", "json") {
		if _, err := taxfolio.DecodePriceHistory(strings.NewReader(block)); err != nil {
			t.Errorf("price history example does not decode: %v\n%s", err, block)
		}
	}
}

func TestConfigExamples(t *testing.T) {
	blocks := codeBlocks(t, "config.md", "toml")
	if len(blocks) == 0 {
		t.Fatal("config.md has no toml example")
	}
	for _, block := range blocks {
		var v map[string]any
		if err := toml.Unmarshal([]byte(block), &v); err != nil {
			t.Errorf("config example is not valid TOML: %v\n%s", err, block)
		}
	}
}
