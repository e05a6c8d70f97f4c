package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	readability "github.com/giulianopz/go-readerview"
	"github.com/yosssi/gohtml"
)

// CLI is the command line of the program.
type CLI struct {
	Input          string        `arg:"" help:"URL, file path or '-' for standard input"`
	Output         string        `short:"o" enum:"text,html,markdown,json" default:"text" help:"Output format: text, html, markdown or json"`
	Verbose        bool          `short:"v" help:"Log the parse trace to standard error"`
	Pretty         bool          `help:"Indent the html output"`
	Sanitize       bool          `help:"Strip unsafe markup from the content"`
	BaseURL        string        `name:"base-url" help:"URL used to resolve the relative links of a local document"`
	MaxElems       int           `name:"max-elems" default:"0" help:"Maximum number of elements to parse, 0 for no limit"`
	Threshold      int           `default:"500" help:"Minimum length of the extracted text"`
	DataURIImages  bool          `name:"data-uri-images" help:"Inline the content images as data URIs"`
	MinImageSize   int64         `name:"min-image-size" default:"0" help:"Drop inlined images smaller than this many bytes"`
	DetectLanguage bool          `name:"detect-language" help:"Guess the language from the extracted text"`
	Timeout        time.Duration `short:"t" default:"10s" help:"Timeout of each HTTP request"`
	UserAgent      string        `name:"user-agent" env:"READABILITY_USER_AGENT" help:"User agent of the HTTP requests"`
}

// Main represents the program.
type Main struct {
	// Fetchers for end-to-end testing. When nil, HTTP fetchers are used.
	Fetcher      readability.Fetcher
	ImageFetcher readability.ImageFetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("readability"),
		kong.Description("Extract the main content of a web page"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("missing input")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	reader, err := readability.New(m.options(cli, stderr)...)
	if err != nil {
		return err
	}

	article, err := m.extract(ctx, reader, cli, stdin)
	if err != nil {
		return err
	}

	if cli.DataURIImages && article.IsReadable {
		article, err = article.WithDataURIImages(ctx, cli.MinImageSize)
		if err != nil {
			return err
		}
	}

	if cli.Output == "json" {
		bs, err := json.MarshalIndent(article, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(bs))
		return article.Err()
	}

	if err := article.Err(); err != nil {
		return fmt.Errorf("%s: %w", cli.Input, err)
	}

	switch cli.Output {
	case "html":
		content := article.Content
		if cli.Pretty {
			content = gohtml.Format(content)
		}
		fmt.Fprintln(stdout, content)
	default:
		fmt.Fprintln(stdout, article.TextContent())
	}
	return nil
}

func (m *Main) options(cli *CLI, stderr io.Writer) []readability.Option {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	httpOpts := []readability.HTTPOption{
		readability.WithTimeout(cli.Timeout),
		readability.WithUserAgent(cli.UserAgent),
	}

	var fetcher readability.Fetcher = readability.NewHTTPFetcher(httpOpts...)
	if m.Fetcher != nil {
		fetcher = m.Fetcher
	}
	var imageFetcher readability.ImageFetcher = readability.NewHTTPImageFetcher(httpOpts...)
	if m.ImageFetcher != nil {
		imageFetcher = m.ImageFetcher
	}

	opts := []readability.Option{
		readability.Logger(logger),
		readability.MaxElemsToParse(cli.MaxElems),
		readability.WordThreshold(cli.Threshold),
		readability.WithFetcher(fetcher),
		readability.WithImageFetcher(imageFetcher),
	}
	if cli.Sanitize {
		opts = append(opts, readability.Serializer(readability.SanitizingSerializer()))
	}
	if cli.Output == "markdown" {
		opts = append(opts, readability.TextConverter(readability.MarkdownConverter()))
	}
	if cli.DetectLanguage {
		opts = append(opts, readability.WithLanguageDetector(readability.DetectLanguage))
	}
	return opts
}

func (m *Main) extract(ctx context.Context, reader *readability.Reader, cli *CLI, stdin io.Reader) (*readability.Article, error) {
	if strings.HasPrefix(cli.Input, "http://") || strings.HasPrefix(cli.Input, "https://") {
		return reader.ParseURL(ctx, cli.Input), nil
	}

	var bs []byte
	var err error
	if cli.Input == "-" {
		bs, err = io.ReadAll(stdin)
	} else {
		bs, err = os.ReadFile(cli.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return reader.Parse(string(bs), cli.BaseURL), nil
}
