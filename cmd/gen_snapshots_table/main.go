// Command gen_snapshots_table rewrites the demo gallery in the README from
// the reference snapshots written by the demo snapshot tests.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli"
)

const (
	startMarker = "<!-- SNAPSHOTS:START -->"
	endMarker   = "<!-- SNAPSHOTS:END -->"
)

var errNoMarkers = errors.New("snapshot markers not found")

func main() {
	app := cli.NewApp()
	app.Name = "gen_snapshots_table"
	app.Usage = "update the README snapshot gallery"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "readme",
			Usage: "Path to README file to update in place",
			Value: "README.md",
		},
		cli.StringFlag{
			Name:  "snapshots",
			Usage: "Snapshots directory",
			Value: filepath.Join("cmd", "ugba", "testdata", "snapshots"),
		},
		cli.IntFlag{
			Name:  "cols",
			Usage: "Number of columns per row",
			Value: 4,
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "Image width in pixels",
			Value: 240,
		},
	}
	app.Action = func(c *cli.Context) error {
		return update(c.String("readme"), c.String("snapshots"), c.Int("cols"), c.Int("width"))
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Failed to update snapshot table", "error", err)
		os.Exit(1)
	}
}

type item struct {
	Name    string
	Encoded string
}

// collect lists the reference PNGs in dir, skipping the _actual ones left
// behind by failed comparisons.
func collect(dir string) ([]item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var items []item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".png") || strings.Contains(name, "_actual.") {
			continue
		}
		items = append(items, item{Name: strings.TrimSuffix(name, ".png"), Encoded: url.PathEscape(name)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func table(items []item, dir string, cols, width int) string {
	if cols <= 0 {
		cols = 3
	}
	var b strings.Builder
	b.WriteString("<table>\n")
	for i := 0; i < len(items); i += cols {
		b.WriteString("  <tr>\n")
		for c := 0; c < cols; c++ {
			if i+c >= len(items) {
				b.WriteString("    <td></td>\n")
				continue
			}
			it := items[i+c]
			src := filepath.ToSlash(filepath.Join(dir, it.Encoded))
			fmt.Fprintf(&b, "    <td align=\"center\"><img src=\"%s\" width=\"%d\" /><br><sub>%s</sub></td>\n", src, width, it.Name)
		}
		b.WriteString("  </tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}

// splice replaces the text between the markers with t.
func splice(content, t string) (string, error) {
	start := strings.Index(content, startMarker)
	end := strings.Index(content, endMarker)
	if start == -1 || end == -1 || end < start {
		return "", errNoMarkers
	}
	before := content[:start+len(startMarker)]
	after := content[end:]
	if !strings.HasPrefix(after, "\n") {
		t += "\n"
	}
	return before + "\n" + t + after, nil
}

func update(readme, dir string, cols, width int) error {
	items, err := collect(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	data, err := os.ReadFile(readme)
	if err != nil {
		return fmt.Errorf("reading %s: %w", readme, err)
	}
	out, err := splice(string(data), table(items, dir, cols, width))
	if err != nil {
		return fmt.Errorf("%s: %w, add %s and %s", readme, err, startMarker, endMarker)
	}
	return os.WriteFile(readme, []byte(out), 0o644)
}
