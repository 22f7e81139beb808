package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/mcp"
	"github.com/hpungsan/kudos/internal/ops"
	"github.com/hpungsan/kudos/internal/report"
	"github.com/hpungsan/kudos/internal/store"
	"github.com/hpungsan/kudos/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// rt may be nil when only help or version output is needed.
func newCLIApp(rt *runtime) *cli.App {
	app := &cli.App{
		Name:    "kudos",
		Usage:   "Star-rated feedback with generated replies and analysis",
		Version: Version,
		Commands: []*cli.Command{
			submitCmd(rt),
			regenerateCmd(rt),
			listCmd(rt),
			showCmd(rt),
			statsCmd(rt),
			exportCmd(rt),
			reportCmd(rt),
			serveCmd(rt),
			mcpCmd(rt),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// submitCmd creates the submit command.
func submitCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit a rated review (reads the review from stdin when --review is omitted)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "rating", Aliases: []string{"r"}, Required: true, Usage: "Star rating from 1 to 5"},
			&cli.StringFlag{Name: "review", Usage: "Review text"},
		},
		Action: func(c *cli.Context) error {
			rating := c.Int("rating")
			if err := feedback.CheckRating(rating); err != nil {
				return outputError(err)
			}

			review := c.String("review")
			if !c.IsSet("review") && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				review = text
			}

			output, err := rt.pipeline.Submit(c.Context, ops.SubmitInput{Rating: rating, Review: review})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// regenerateCmd creates the regenerate command.
func regenerateCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "regenerate",
		Usage:     "Generate a fresh analysis for one record, or for every record lacking one",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Analyze every record without an analysis"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("all") {
				if c.NArg() > 0 {
					return outputError(errors.NewInvalidRequest("--all does not take an id"))
				}
				output, err := rt.pipeline.RegenerateMissing(c.Context)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c, output)
			}

			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}

			output, err := rt.pipeline.Regenerate(c.Context, ops.RegenerateInput{ID: id})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List feedback, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "pending", Usage: "Only records without an analysis"},
			&cli.StringFlag{Name: "bucket", Aliases: []string{"b"}, Usage: "Filter by bucket: positive|neutral|negative"},
		},
		Action: func(c *cli.Context) error {
			output, err := rt.pipeline.List(c.Context, ops.ListInput{
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
				Pending: c.Bool("pending"),
				Bucket:  c.String("bucket"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one feedback record",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}

			output, err := rt.pipeline.Fetch(c.Context, ops.FetchInput{ID: id})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregate statistics",
		Action: func(c *cli.Context) error {
			return outputJSON(c, rt.pipeline.Stats(c.Context))
		},
	}
}

// exportCmd creates the export command.
func exportCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export feedback to a JSONL file under ~/.kudos/exports",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pending", Usage: "Only records without an analysis"},
		},
		Action: func(c *cli.Context) error {
			output, err := rt.pipeline.Export(c.Context, ops.ExportInput{Pending: c.Bool("pending")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render the operator report as Markdown or HTML",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "recent", Value: 0, Usage: "Recent records to include (0 = default, -1 = all)"},
			&cli.BoolFlag{Name: "html", Usage: "Render HTML instead of Markdown"},
			&cli.BoolFlag{Name: "pretty", Usage: "Render styled Markdown for the terminal"},
			&cli.StringFlag{Name: "style", Usage: "Terminal style for --pretty: dark|light|notty (default: detect)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the report to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			output, err := rt.pipeline.Report(c.Context, ops.ReportInput{Recent: c.Int("recent")})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("html") && c.Bool("pretty") {
				return outputError(errors.NewInvalidRequest("--html and --pretty are mutually exclusive"))
			}

			body := []byte(output.Markdown)
			switch {
			case c.Bool("html"):
				body = output.HTML
			case c.Bool("pretty"):
				text, err := report.Terminal(output.Markdown, c.String("style"), report.TerminalWidth)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				body = []byte(text)
			}

			if path := c.String("out"); path != "" {
				err := store.WriteFileAtomic(path, func(w io.Writer) error {
					_, werr := w.Write(body)
					return werr
				})
				if err != nil {
					return outputError(errors.NewStorage("write report", err))
				}
				return outputJSON(c, map[string]any{"path": path, "bytes": len(body)})
			}

			_, err = c.App.Writer.Write(body)
			return err
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON feedback API and HTML report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 0 and 65535"))
			}
			srv := web.NewServer(rt.pipeline, rt.log, Version, c.String("bind"), port)
			return web.Run(srv, rt.log)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server over stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(rt.pipeline, rt.cfg, rt.log, Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to the app writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var kErr *errors.KudosError
	if stderrors.As(err, &kErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", kErr.Code, kErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseID reads the positional record id.
func parseID(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid id: %q", c.Args().First()))
	}
	return id, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
