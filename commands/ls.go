package commands

import (
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"
	"text/tabwriter"

	fcolor "github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"

	"github.com/vsh-project/vsh/core/interp"
	"github.com/vsh-project/vsh/core/vfs"
)

// lsEntry pairs an inode with the name to display for it. Directory
// listings show the base name; file arguments show the path as typed.
type lsEntry struct {
	node *vfs.Inode
	name string
}

// Ls implements the UNIX ls command.
func Ls(p *interp.Proc) int {
	opts := getopt.New()
	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")
	humanSize := opts.BoolLong("human-readable", 'h', "print human readable sizes")
	lineWidth := opts.IntLong("width", 'w', p.PTY().Width, "set the column width, 0 is infinite")
	helpOpt := opts.BoolLong("help", '?', "show help and exit")

	var color ColorPrinter
	color.Init(opts, p)

	if err := opts.Getopt(p.Args(), nil); err != nil || *helpOpt {
		w := p.Stderr()
		if err != nil {
			p.LogInvalidInvocation(err)
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Usage: ls [OPTION]... [FILE]...")
		fmt.Fprintln(w, "List information about the FILEs (the current directory by default).")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		opts.PrintOptions(w)
		return 1
	}

	targets := opts.Args()
	if len(targets) == 0 {
		targets = append(targets, ".")
	}
	sort.Strings(targets)

	showDirectoryNames := len(targets) > 1

	sizeFmt := func(bytes int64) string {
		return fmt.Sprintf("%d", bytes)
	}
	if *humanSize {
		sizeFmt = BytesToHuman
	}

	if *lineWidth == 0 {
		*lineWidth = math.MaxInt32
	}

	uid2name := UidResolver(p)
	gid2name := GidResolver(p)

	exitCode := 0

	for _, target := range targets {
		node, err := p.FS().StatFollow(p.Resolve(target))
		if err != nil {
			fmt.Fprintf(p.Stderr(), "ls: %s: %v\n", target, pathErrMessage(err))
			exitCode = 1
			continue
		}

		var entries []lsEntry
		showTotal := false
		if node.IsDir() {
			children, err := p.FS().ReadDir(p.Resolve(target))
			if err != nil {
				fmt.Fprintf(p.Stderr(), "ls: %s: %v\n", target, pathErrMessage(err))
				exitCode = 1
				continue
			}
			for _, child := range children {
				if !*listAll && strings.HasPrefix(child.Name(), ".") {
					continue
				}
				entries = append(entries, lsEntry{node: child, name: child.Name()})
			}
			showTotal = true
		} else {
			entries = append(entries, lsEntry{node: node, name: target})
		}

		if showDirectoryNames {
			fmt.Fprintf(p.Stdout(), "%s:\n", target)
		}

		if *longListing {
			if showTotal {
				var totalSize int64
				for _, e := range entries {
					totalSize += e.node.Size
				}
				fmt.Fprintf(p.Stdout(), "total %d\n", totalSize)
			}
			tw := tabwriter.NewWriter(p.Stdout(), 0, 0, 1, ' ', 0)
			currentYear := p.FS().Now().Year()
			for _, e := range entries {
				// Approximate: self plus parent for directories.
				hardLinks := 1
				if e.node.IsDir() {
					hardLinks = 2
				}

				// Include time rather than year for recent entries.
				modTime := e.node.Mtime.Format("Jan _2 2006")
				if e.node.Mtime.Year() >= currentYear {
					modTime = e.node.Mtime.Format("Jan _2 15:04")
				}

				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					e.node.FileInfo().Mode().String(),
					hardLinks,
					uid2name(e.node.UID),
					gid2name(e.node.GID),
					sizeFmt(e.node.Size),
					modTime,
					color.Sprintf(Dircolor(e.node.FileInfo()), "%s", e.name))
			}
			tw.Flush()
		} else {
			colWidths := columnize(entries, *lineWidth)
			cols := len(colWidths)
			rows := len(entries) / cols
			if len(entries)%cols > 0 {
				rows++
			}

			tw := p.Stdout()
			for row := 0; row < rows; row++ {
				for col, width := range colWidths {
					// Pad between columns.
					if col > 0 {
						fmt.Fprintf(tw, "  ")
					}
					// Find and print the file entry.
					if index := (col * rows) + row; index < len(entries) {
						entry := entries[index]
						width -= len(entry.name)
						fmt.Fprint(tw, color.Sprintf(Dircolor(entry.node.FileInfo()), "%s", entry.name))
					}
					// Pad for alignment.
					if width > 0 {
						fmt.Fprint(tw, strings.Repeat(" ", width))
					}
				}
				fmt.Fprintln(tw)
			}
		}
	}

	return exitCode
}

type lsColorTest struct {
	color *fcolor.Color
	test  func(fileInfo fs.FileInfo) bool
}

// Color listing comes from: https://askubuntu.com/a/884513
var dircolors = []lsColorTest{
	// Directories are bold blue.
	{color: ColorBoldBlue, test: fs.FileInfo.IsDir},
	// Symlinks are bold cyan.
	{color: ColorBoldCyan, test: func(fi fs.FileInfo) bool {
		return fi.Mode()&fs.ModeSymlink > 0
	}},
	// Executables are bold green.
	{color: ColorBoldGreen, test: func(fi fs.FileInfo) bool {
		return fi.Mode().Perm()&0111 > 0
	}},
	// Archives are bold red.
	{color: ColorBoldRed, test: func(fi fs.FileInfo) bool {
		return map[string]bool{
			".tar": true,
			".tgz": true,
			".zip": true,
			".gz":  true,
			".bz2": true,
			".bz":  true,
			".tbz": true,
			".deb": true,
			".rpm": true,
			".jar": true,
			".war": true,
			".rar": true,
		}[path.Ext(fi.Name())]
	}},
}

// Dircolor picks the display color for a directory entry.
func Dircolor(fileInfo fs.FileInfo) *fcolor.Color {
	for _, dc := range dircolors {
		if dc.test(fileInfo) {
			return dc.color
		}
	}

	// Anything else defaults to white.
	return fcolor.New(fcolor.FgHiWhite)
}

// columnize computes per-column widths that fit the entries in the
// given screen width, filling columns top to bottom.
func columnize(entries []lsEntry, screenWidth int) []int {
	numFiles := len(entries)
	if numFiles == 0 {
		return []int{0}
	}

	const colPadding = 2

	displayLengths := make([]int, len(entries))
	for i, e := range entries {
		displayLengths[i] = len(e.name)
	}

	// Start with the maximum number of columns and work down until the
	// data fits. 3 is the minimum column width, 1 char name + 2 padding.
	columns := screenWidth / (1 + colPadding)
	if columns > len(entries) {
		columns = len(entries)
	}
	var maximums []int // Holds maximum size of a name in the column.
	for ; columns >= 1; columns-- {
		maximums = make([]int, columns)
		total := (columns - 1) * colPadding
		rows := (numFiles / columns) + 1
		for i, nameLen := range displayLengths {
			prevMax := maximums[i/rows]
			if nameLen > prevMax {
				maximums[i/rows] = nameLen
				total = total - prevMax + nameLen
				if total > screenWidth {
					break
				}
			}
		}

		if total <= screenWidth {
			return maximums
		}
	}

	return maximums
}

var _ CommandFunc = Ls

func init() {
	registerCommand(Ls, "ls")
}
