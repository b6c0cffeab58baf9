package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/interaction"
	"github.com/1broseidon/canvaslist/internal/ipc"
	"github.com/1broseidon/canvaslist/internal/window"
)

// optionalInt is an int flag that records whether it was set.
type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.Itoa(*o.value)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	o.value = &n
	return nil
}

// parseInts converts positional arguments, naming the first bad one.
func parseInts(args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(names), len(args))
	}
	out := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", names[i], arg)
		}
		out[i] = n
	}
	return out, nil
}

func printRecord(rec window.Record) {
	fmt.Printf("id:        %d\n", rec.ID)
	fmt.Printf("kind:      %s\n", rec.Kind)
	if rec.Title != "" {
		fmt.Printf("title:     %s\n", rec.Title)
	}
	fmt.Printf("position:  %d,%d\n", rec.Position.X, rec.Position.Y)
	fmt.Printf("size:      %dx%d\n", rec.Size.Width, rec.Size.Height)
	fmt.Printf("z_order:   %d\n", rec.ZOrder)
	fmt.Printf("minimized: %v\n", rec.Minimized)
}

func printRecordTable(recs []window.Record) {
	fmt.Printf("%-5s %-5s %-12s %-10s %-4s %-4s %s\n", "ID", "KIND", "POSITION", "SIZE", "Z", "MIN", "TITLE")
	for _, rec := range recs {
		minimized := ""
		if rec.Minimized {
			minimized = "yes"
		}
		fmt.Printf("%-5d %-5s %-12s %-10s %-4d %-4s %s\n",
			rec.ID, rec.Kind,
			fmt.Sprintf("%d,%d", rec.Position.X, rec.Position.Y),
			fmt.Sprintf("%dx%d", rec.Size.Width, rec.Size.Height),
			rec.ZOrder, minimized, rec.Title)
	}
}

func runWindow(cmd string, args []string) int {
	switch cmd {
	case "list":
		return runList(args)
	case "create":
		return runCreate(args)
	case "move":
		return runWindowCall(cmd, "canvaslist move <id> <x> <y>", "Move a window. The position is corrected into the reachable area.", args,
			[]string{"id", "x", "y"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Move(n[0], n[1], n[2]) })
	case "resize":
		return runWindowCall(cmd, "canvaslist resize <id> <width> <height>", "Resize a window. The size is clamped to the minimum and the viewport.", args,
			[]string{"id", "width", "height"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Resize(n[0], n[1], n[2]) })
	case "get":
		return runWindowCall(cmd, "canvaslist get <id>", "Show one window.", args,
			[]string{"id"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Get(n[0]) })
	case "front":
		return runWindowCall(cmd, "canvaslist front <id>", "Bring a window above all others.", args,
			[]string{"id"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Front(n[0]) })
	case "minimize":
		return runWindowCall(cmd, "canvaslist minimize <id>", "Minimize a window.", args,
			[]string{"id"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Minimize(n[0]) })
	case "restore":
		return runWindowCall(cmd, "canvaslist restore <id>", "Restore a minimized window and bring it to front.", args,
			[]string{"id"}, func(c *ipc.Client, n []int) (window.Record, error) { return c.Restore(n[0]) })
	case "destroy":
		return runDestroy(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n", cmd)
		return 2
	}
}

func runList(args []string) int {
	fs := newFlagSet("list", "canvaslist list [--json]", "List windows in creation order.")
	jsonOut := fs.Bool("json", false, "Output windows as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	recs, err := ipc.NewClient().List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(recs)
	}
	printRecordTable(recs)
	return 0
}

func runCreate(args []string) int {
	fs := newFlagSet("create", "canvaslist create [flags] <id>",
		"Create a window. Omitted position uses cascade placement; omitted size uses the default size.")
	kind := fs.String("kind", "list", "Window kind: list or item")
	title := fs.String("title", "", "Window title")
	var x, y, width, height, z optionalInt
	fs.Var(&x, "x", "Initial x position")
	fs.Var(&y, "y", "Initial y position")
	fs.Var(&width, "width", "Initial width")
	fs.Var(&height, "height", "Initial height")
	fs.Var(&z, "z", "Initial z-order")
	jsonOut := fs.Bool("json", false, "Output the window as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	ids, err := parseInts(fs.Args(), "id")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	rec, err := ipc.NewClient().Create(daemon.CreateRequest{
		ID:     ids[0],
		Kind:   *kind,
		Title:  *title,
		X:      x.value,
		Y:      y.value,
		Width:  width.value,
		Height: height.value,
		ZOrder: z.value,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(rec)
	}
	printRecord(rec)
	return 0
}

func runWindowCall(name, usage, description string, args []string, argNames []string, call func(*ipc.Client, []int) (window.Record, error)) int {
	fs := newFlagSet(name, usage, description)
	jsonOut := fs.Bool("json", false, "Output the window as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	nums, err := parseInts(fs.Args(), argNames...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	rec, err := call(ipc.NewClient(), nums)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(rec)
	}
	printRecord(rec)
	return 0
}

func runDestroy(args []string) int {
	fs := newFlagSet("destroy", "canvaslist destroy <id>", "Destroy a window. Unknown ids are reported but not an error.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	ids, err := parseInts(fs.Args(), "id")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	removed, err := ipc.NewClient().Destroy(ids[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if removed {
		fmt.Printf("destroyed: %d\n", ids[0])
	} else {
		fmt.Printf("not found: %d\n", ids[0])
	}
	return 0
}

func runScan(args []string) int {
	fs := newFlagSet("scan", "canvaslist scan", "Check every window now and correct unreachable ones.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	res, err := ipc.NewClient().Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("checked:   %d\n", res.Checked)
	fmt.Printf("skipped:   %d\n", res.Skipped)
	fmt.Printf("corrected: %d\n", res.Corrected)
	return 0
}

func runViewport(args []string) int {
	fs := newFlagSet("viewport", "canvaslist viewport [<width> <height>]",
		"Show the viewport, or set it and schedule a position check.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client := ipc.NewClient()
	if fs.NArg() == 0 {
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(status.Viewport)
		return 0
	}

	nums, err := parseInts(fs.Args(), "width", "height")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	vp, err := client.SetViewport(nums[0], nums[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(vp)
	return 0
}

func runPointer(args []string) int {
	fs := newFlagSet("pointer", "canvaslist pointer [flags] <down|move|up> <x> <y>",
		"Send a pointer event to the interaction controller.")
	target := fs.String("target", string(interaction.TargetHeader), "Target for down events: header or resize")
	windowID := fs.Int("window", 0, "Window id for down events")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "pointer requires <action> <x> <y>")
		fs.Usage()
		return 2
	}
	action := interaction.PointerAction(fs.Arg(0))
	switch action {
	case interaction.ActionDown, interaction.ActionMove, interaction.ActionUp:
	default:
		fmt.Fprintf(os.Stderr, "unknown pointer action %q\n", fs.Arg(0))
		return 2
	}
	pos, err := parseInts(fs.Args()[1:], "x", "y")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	out, err := ipc.NewClient().Pointer(interaction.PointerEvent{
		Action:   action,
		Target:   interaction.Target(*target),
		WindowID: *windowID,
		X:        pos[0],
		Y:        pos[1],
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("phase:   %s\n", out.Phase)
	if out.WindowID != 0 {
		fmt.Printf("window:  %d\n", out.WindowID)
		fmt.Printf("rect:    %d,%d %dx%d\n", out.Rect.X, out.Rect.Y, out.Rect.Width, out.Rect.Height)
	}
	fmt.Printf("applied: %v\n", out.Applied)
	return 0
}
