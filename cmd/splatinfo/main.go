// splatinfo decodes a point-cloud or Gaussian-splat asset and reports what
// is inside it: vertex count, extents, channels, and optionally octree and
// probe-query statistics.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ahmad-kad/splatcloud/octree"
	"github.com/ahmad-kad/splatcloud/splat"
)

func main() {
	app := &cli.App{
		Name:      "splatinfo",
		Usage:     "inspect a point-cloud / Gaussian-splat asset",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "octree",
				Usage: "build the spatial index and print its statistics",
			},
			&cli.StringFlag{
				Name:  "radius",
				Usage: "probe query as x,y,z,r; implies --octree",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log recoverable decode anomalies",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one input file")
	}
	path := c.Args().First()

	var logger golog.Logger
	if c.Bool("verbose") {
		logger = golog.NewDevelopmentLogger("splatinfo")
	} else {
		logger = golog.NewLogger("splatinfo")
	}

	buf, err := splat.DecodeFile(path, logger)
	if err != nil {
		return errors.Wrapf(err, "decoding %q", path)
	}

	fmt.Printf("file:      %s\n", path)
	fmt.Printf("vertices:  %d\n", buf.VertexCount)
	min, max := buf.MinMax()
	fmt.Printf("extents:   min (%.3f, %.3f, %.3f) max (%.3f, %.3f, %.3f)\n",
		min.X, min.Y, min.Z, max.X, max.Y, max.Z)
	fmt.Printf("channels:  %s\n", strings.Join(channelNames(buf), ", "))
	if buf.TriangleCount() > 0 {
		fmt.Printf("triangles: %d\n", buf.TriangleCount())
	}
	if buf.Colors != nil {
		fmt.Printf("mean color: %s\n", meanColor(buf).Hex())
	}

	if !c.Bool("octree") && c.String("radius") == "" {
		return nil
	}

	tree, err := octree.BuildFromBuffer(buf, logger)
	if err != nil {
		return err
	}
	center, half := tree.Bounds()
	fmt.Printf("octree:    %d nodes, root center (%.3f, %.3f, %.3f), half extent %.3f\n",
		tree.NodeCount(), center.X, center.Y, center.Z, half)

	if spec := c.String("radius"); spec != "" {
		pos, radius, err := parseRadius(spec)
		if err != nil {
			return err
		}
		hits := tree.QueryRadius(pos, radius)
		fmt.Printf("radius probe: %d points within %.3f of (%.3f, %.3f, %.3f)\n",
			len(hits), radius, pos.X, pos.Y, pos.Z)
	}
	return nil
}

func channelNames(buf *splat.Buffer) []string {
	names := []string{"position"}
	if buf.Normals != nil {
		names = append(names, "normal")
	}
	if buf.Colors != nil {
		names = append(names, "color")
	}
	if buf.Scales != nil {
		names = append(names, "scale")
	}
	if buf.Rotations != nil {
		names = append(names, "rotation")
	}
	return names
}

func meanColor(buf *splat.Buffer) colorful.Color {
	var r, g, b float64
	for i := 0; i < buf.VertexCount; i++ {
		cr, cg, cb, _ := buf.Color(i)
		r += cr
		g += cg
		b += cb
	}
	n := float64(buf.VertexCount)
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}

func parseRadius(spec string) (r3.Vector, float64, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return r3.Vector{}, 0, errors.Errorf("radius spec %q must be x,y,z,r", spec)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vector{}, 0, errors.Wrapf(err, "radius spec %q", spec)
		}
		vals[i] = v
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, vals[3], nil
}
