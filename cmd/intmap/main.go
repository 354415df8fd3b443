package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/urfave/cli/v2"

	"github.com/aglyzov/go-intmap/intmap"
)

// row is a reference counted value, like the series/rows the map indexes.
type row struct {
	id   uint64
	name string
	ref  uint16
}

func (r *row) IncRef() { r.ref++ }
func (r *row) DecRef() { r.ref-- }

func main() {
	app := cli.App{
		Name:  "intmap",
		Usage: "informal debugging CLI tool for the uint64 radix map",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level",
			},
		},
		Before: func(cctx *cli.Context) error {
			level := slog.LevelInfo
			if cctx.Bool("verbose") {
				level = slog.LevelDebug
			}
			h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(h))
			return nil
		},
	}

	commonFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "number of random keys",
			Value:   100_000,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "seed of the random generator",
			Value: 1234567890,
		},
		&cli.Uint64Flag{
			Name:  "limit",
			Usage: "byte budget of the map storage (0 is unlimited)",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:   "fill",
			Usage:  "fill a map with random keys, then pop half of them",
			Flags:  commonFlags,
			Action: runFill,
		},
		{
			Name:   "union",
			Usage:  "merge two overlapping maps of shared rows",
			Flags:  commonFlags,
			Action: runUnion,
		},
	}

	app.RunAndExitOnError()
}

func newAllocator(cctx *cli.Context) intmap.Allocator {
	if budget := cctx.Uint64("limit"); budget != 0 {
		return intmap.NewLimit(uintptr(budget))
	}

	return intmap.Heap{}
}

func logStats(msg string, st intmap.Stats) {
	slog.Info(msg,
		"len", st.Len,
		"arrays", st.Arrays,
		"depth", st.Depth,
		"slots", st.Slots,
		"bytes", st.Bytes,
	)
}

func runFill(cctx *cli.Context) error {
	var (
		fake = gofakeit.New(cctx.Int64("seed"))
		keys = make([]uint64, 0, cctx.Int("count"))
	)

	m, err := intmap.NewWithAllocator[*row](newAllocator(cctx))
	if err != nil {
		return err
	}
	defer m.Free()

	for i := 0; i < cctx.Int("count"); i++ {
		r := &row{id: fake.Uint64(), name: fake.Name(), ref: 1}

		res, err := m.Add(r.id, r)
		if errors.Is(err, intmap.ErrAlloc) {
			slog.Warn("storage budget exhausted", "added", m.Len(), "err", err)
			break
		}
		if err != nil {
			return err
		}

		slog.Debug("add", "key", r.id, "result", res)

		if res == intmap.Inserted {
			keys = append(keys, r.id)
		}
	}

	logStats("filled", m.Stats())

	for _, key := range keys[:len(keys)/2] {
		if _, ok := m.Pop(key); !ok {
			return fmt.Errorf("key %d went missing", key)
		}
	}

	logStats("popped half", m.Stats())

	rows, err := m.Slice()
	if err != nil {
		return err
	}

	fmt.Printf("rows left: %d\n", len(rows))

	return nil
}

func runUnion(cctx *cli.Context) error {
	var (
		fake  = gofakeit.New(cctx.Int64("seed"))
		count = cctx.Int("count")
		alloc = newAllocator(cctx)
	)

	dest, err := intmap.NewWithAllocator[*row](alloc)
	if err != nil {
		return err
	}
	defer dest.Free()

	src, err := intmap.NewWithAllocator[*row](alloc)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		r := &row{id: uint64(fake.Number(0, 4*count)), name: fake.Name(), ref: 1}

		if _, ok := dest.Get(r.id); ok {
			continue
		}

		if _, err := dest.Add(r.id, r); err != nil {
			return err
		}

		if fake.Bool() {
			// shared with src: src takes its own reference
			r.IncRef()

			if _, err := src.Add(r.id, r); err != nil {
				return err
			}
		}
	}

	for i := 0; i < count/2; i++ {
		id := uint64(4*count + 1 + i)

		if _, err := src.Add(id, &row{id: id, name: fake.Name(), ref: 1}); err != nil {
			return err
		}
	}

	slog.Info("before union", "dest", dest.Len(), "src", src.Len())

	var released int

	dest.Union(src, func(r *row) {
		released++
		r.DecRef()
	})

	logStats("after union", dest.Stats())
	slog.Info("released duplicate references", "count", released)

	// every row is back to a single reference
	shared := dest.Walk(func(r *row) int {
		if r.ref != 1 {
			return 1
		}
		return 0
	})
	if shared != 0 {
		return fmt.Errorf("%d rows hold stray references", shared)
	}

	rows, err := intmap.SliceRef(dest)
	if err != nil {
		return err
	}

	for _, r := range rows {
		r.DecRef()
	}

	fmt.Printf("rows after union: %d\n", len(rows))

	return nil
}
