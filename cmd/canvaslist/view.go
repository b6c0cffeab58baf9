package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/canvaslist/internal/ipc"
)

func printViewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  canvaslist view save <key>")
	fmt.Fprintln(w, "  canvaslist view restore <key>")
	fmt.Fprintln(w, "  canvaslist view list [--json]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Keys: root, list:<listId>, item:<listId>/<itemId>")
}

func runView(args []string) int {
	if len(args) == 0 {
		printViewUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printViewUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "save", "restore":
		fs := newFlagSet(args[0], "canvaslist view "+args[0]+" <key>", "Save or restore the open-window snapshot for a view.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "view %s requires <key>\n", args[0])
			fs.Usage()
			return 2
		}

		if args[0] == "save" {
			data, err := client.SaveView(fs.Arg(0))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Printf("saved %s: %d windows\n", data.Key, data.Windows)
			return 0
		}

		data, err := client.RestoreView(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !data.Found {
			fmt.Printf("no snapshot for %s\n", data.Key)
			return 0
		}
		fmt.Printf("restored %s: %d windows\n", data.Key, data.Applied)
		return 0

	case "list":
		fs := newFlagSet("list", "canvaslist view list [--json]", "List saved view snapshots.")
		jsonOut := fs.Bool("json", false, "Output views as JSON")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		views, err := client.ListViews()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(views)
		}
		for _, v := range views {
			fmt.Printf("- %s (%d windows)\n", v.Key, v.Windows)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown view command: %s\n\n", args[0])
		printViewUsage(os.Stderr)
		return 2
	}
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  canvaslist layout save <name>")
	fmt.Fprintln(w, "  canvaslist layout load [--replace] <name>")
	fmt.Fprintln(w, "  canvaslist layout list")
	fmt.Fprintln(w, "  canvaslist layout delete <name>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'canvaslist layout <command> --help' for command-specific options.")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "save":
		fs := newFlagSet("save", "canvaslist layout save <name>", "Persist every open window under a layout name.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "layout save requires <name>")
			fs.Usage()
			return 2
		}
		data, err := client.SaveLayout(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("saved %s: %d windows\n", data.Name, data.Windows)
		return 0

	case "load":
		fs := newFlagSet("load", "canvaslist layout load [--replace] <name>",
			"Recreate windows from a saved layout. Existing ids are skipped unless --replace is set.")
		replace := fs.Bool("replace", false, "Replace windows whose ids already exist")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "layout load requires <name>")
			fs.Usage()
			return 2
		}
		res, err := client.LoadLayout(fs.Arg(0), *replace)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("created:  %d\n", res.Created)
		fmt.Printf("replaced: %d\n", res.Replaced)
		if len(res.Skipped) > 0 {
			fmt.Printf("skipped:  %v\n", res.Skipped)
		}
		return 0

	case "list":
		fs := newFlagSet("list", "canvaslist layout list", "List saved layouts.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		names, err := client.ListLayouts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, name := range names {
			fmt.Printf("- %s\n", name)
		}
		return 0

	case "delete":
		fs := newFlagSet("delete", "canvaslist layout delete <name>", "Delete a saved layout.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "layout delete requires <name>")
			fs.Usage()
			return 2
		}
		if err := client.DeleteLayout(fs.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}
