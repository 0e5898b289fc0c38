// gpsctl talks to a Garmin device over serial or USB: identify it, dump
// record lists, and watch the real-time PVT stream. File-format export
// lives elsewhere; this prints decoded records.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/guiperry/garminlink/internal/hostcfg"
	"github.com/guiperry/garminlink/internal/logging"
	"github.com/guiperry/garminlink/internal/proto"
	"github.com/guiperry/garminlink/pkg/garmin"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#34D399")).
			Padding(0, 1)
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
)

func main() {
	var (
		transport  = flag.String("transport", "", "serial or usb (default from env/.env)")
		port       = flag.String("port", "", "serial port path")
		verbose    = flag.Bool("v", false, "debug-level framing traces")
		info       = flag.Bool("info", false, "print product data and bound protocols")
		waypoints  = flag.Bool("waypoints", false, "download waypoints")
		routes     = flag.Bool("routes", false, "download routes")
		tracks     = flag.Bool("tracks", false, "download the track log")
		laps       = flag.Bool("laps", false, "download fitness laps")
		runs       = flag.Bool("runs", false, "download fitness runs with laps and tracks")
		courses    = flag.Bool("courses", false, "download courses")
		workouts   = flag.Bool("workouts", false, "download workouts")
		almanac    = flag.Bool("almanac", false, "download the almanac")
		proximity  = flag.Bool("proximity", false, "download proximity waypoints")
		flightbook = flag.Bool("flightbook", false, "download the flight book")
		clock      = flag.Bool("time", false, "read the device clock")
		position   = flag.Bool("position", false, "read the current position")
		pvtCount   = flag.Int("pvt", 0, "stream N PVT packets")
	)
	flag.Parse()

	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	cfg, err := hostcfg.LoadSessionConfig()
	if err != nil {
		fatal(err)
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *port != "" {
		cfg.Port = *port
	}

	dev, err := garmin.Open(cfg)
	if err != nil {
		fatal(err)
	}
	defer dev.Close()

	ctx := context.Background()

	if *info {
		prod := dev.ProductData()
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s (product %d, software %.2f)",
			prod.ProductDescription, prod.ProductID, prod.SoftwareVersion)))
		for _, c := range dev.Capabilities() {
			fmt.Printf("  %s %v\n", c.Protocol, c.Datatypes)
		}
	}

	if *waypoints {
		dump("waypoints", func() ([]proto.Item, error) { return dev.Waypoints(ctx, progress) })
	}
	if *routes {
		dump("routes", func() ([]proto.Item, error) { return dev.Routes(ctx, progress) })
	}
	if *tracks {
		dump("tracks", func() ([]proto.Item, error) { return dev.Tracks(ctx, progress) })
	}
	if *laps {
		dump("laps", func() ([]proto.Item, error) { return dev.Laps(ctx, progress) })
	}
	if *almanac {
		dump("almanac", func() ([]proto.Item, error) { return dev.Almanac(ctx, progress) })
	}
	if *proximity {
		dump("proximity waypoints", func() ([]proto.Item, error) { return dev.ProximityWaypoints(ctx, progress) })
	}
	if *flightbook {
		dump("flight book", func() ([]proto.Item, error) { return dev.Flightbook(ctx, progress) })
	}
	if *runs {
		result, err := dev.Runs(ctx, progress)
		if err != nil {
			fatal(err)
		}
		printItems("runs", result.Runs)
		printItems("laps", result.Laps)
		printItems("tracks", result.Tracks)
	}
	if *workouts {
		result, err := dev.Workouts(ctx, progress)
		if err != nil {
			fatal(err)
		}
		printItems("workouts", result.Workouts)
		printItems("occurrences", result.Occurrences)
	}
	if *courses {
		result, err := dev.Courses(ctx, progress)
		if err != nil {
			fatal(err)
		}
		printItems("courses", result.Courses)
		printItems("course laps", result.Laps)
		printItems("course tracks", result.Tracks)
		printItems("course points", result.Points)
	}
	if *clock {
		t, err := dev.Time(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("device time: %s\n", t.UTC())
	}
	if *position {
		lat, lon, err := dev.Position(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("position: %.6f, %.6f\n", lat, lon)
	}
	if *pvtCount > 0 {
		streamPVT(ctx, dev, *pvtCount)
	}
}

func dump(name string, get func() ([]proto.Item, error)) {
	items, err := get()
	if err != nil {
		fatal(err)
	}
	printItems(name, items)
}

func printItems(name string, items []proto.Item) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d %s", len(items), name)))
	for _, item := range items {
		rec := item.Record
		if rec == nil {
			continue
		}
		fmt.Printf("  [%s]", rec.Schema.Name)
		for i, f := range rec.Schema.Fields {
			fmt.Printf(" %s=%v", f.Name, rec.Values[i])
		}
		fmt.Println()
	}
}

func streamPVT(ctx context.Context, dev *garmin.Device, count int) {
	pvt, err := dev.PVT()
	if err != nil {
		fatal(err)
	}
	if err := pvt.DataOn(ctx); err != nil {
		fatal(err)
	}
	defer pvt.DataOff(ctx)
	for i := 0; i < count; i++ {
		item, err := pvt.Get(ctx)
		if err != nil {
			fatal(err)
		}
		printItems("pvt", []proto.Item{item})
	}
}

func progress(current, total int) {
	fmt.Fprint(os.Stderr, progressStyle.Render(fmt.Sprintf("\r%d/%d", current, total)))
	if current == total {
		fmt.Fprintln(os.Stderr)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "gpsctl:", err)
	os.Exit(1)
}
