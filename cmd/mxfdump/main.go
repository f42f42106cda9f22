// Copyright 2024 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// mxfdump is a small inspection tool for container files: point it at a
// file and ask for its tracks and header metadata sets, or a track's
// index table. It does not print the partition chain.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saferwall/mxf"
	"github.com/saferwall/mxf/internal/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	keepDark bool
)

func main() {
	root := &cobra.Command{
		Use:   "mxfdump",
		Short: "Inspect container files: tracks, header metadata, index tables",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also log debug messages, and list each set's items with inspect --sets")
	root.PersistentFlags().BoolVar(&keepDark, "keep-dark", true, "preserve unrecognised (dark) metadata sets")

	root.AddCommand(newInspectCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print mxfdump's version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mxfdump 0.1.0")
		},
	}
}

func openClip(path string) (*mxf.ClipReader, error) {
	f, err := mxf.OpenOnDiskFile(path)
	if err != nil {
		return nil, err
	}
	model, err := mxf.NewBaselineDataModel()
	if err != nil {
		return nil, err
	}
	logger := log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(logLevel())))

	var keep mxf.KeepFilter
	if !keepDark {
		keep = func(setKey mxf.UL, uid mxf.UUID) bool {
			_, known := model.SetDefByKey(setKey)
			return known
		}
	}
	return mxf.Open(f, model, keep, logger)
}

func logLevel() log.Level {
	if verbose {
		return log.LevelDebug
	}
	return log.LevelWarn
}

func newInspectCmd() *cobra.Command {
	var showSets bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List a container file's tracks and, with --sets, its header metadata sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cr, err := openClip(args[0])
			if cr == nil {
				return err
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			printTracks(cr)
			if showSets {
				printHeaderMetadata(cr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSets, "sets", false, "also dump every header metadata set")
	return cmd
}

func printTracks(cr *mxf.ClipReader) {
	for _, t := range cr.Tracks() {
		fmt.Printf("track element-key=% x\n", t.ElementKey)
	}
}

func printHeaderMetadata(cr *mxf.ClipReader) {
	hm := cr.HeaderMetadata()
	if hm == nil {
		fmt.Println("no header metadata found")
		return
	}
	model, err := mxf.NewBaselineDataModel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: building label model: %v\n", err)
	}
	for _, s := range hm.AllSets() {
		label := "Dark"
		if !s.Dark && model != nil {
			if def, ok := model.SetDefByKey(s.SetKey); ok {
				label = def.Label
			}
		}
		fmt.Printf("set %-20s instance=%s dark=%v\n", label, s.InstanceUID, s.Dark)
		if verbose && !s.Dark {
			for _, key := range s.ItemKeys() {
				raw, _ := s.GetRaw(key)
				fmt.Printf("    item % x (%d bytes)\n", key, len(raw))
			}
		}
	}
}

func newIndexCmd() *cobra.Command {
	var elementKeyHex string
	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Dump a track's index entries (position, temporal offset, key-frame offset, flags)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cr, err := openClip(args[0])
			if cr == nil {
				return err
			}
			tracks := cr.Tracks()
			if len(tracks) == 0 {
				return fmt.Errorf("mxfdump: no tracks found")
			}
			target := tracks[0]
			if elementKeyHex != "" {
				found := false
				for _, t := range tracks {
					if fmt.Sprintf("% x", t.ElementKey) == elementKeyHex {
						target = t
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("mxfdump: no track with element key %s", elementKeyHex)
				}
			}
			tr, err := cr.TrackReader(target.ElementKey)
			if err != nil {
				return err
			}
			return dumpIndex(tr)
		},
	}
	cmd.Flags().StringVar(&elementKeyHex, "track", "", "element key of the track to dump (defaults to the first)")
	return cmd
}

type indexRow struct {
	Position       int64 `json:"position"`
	TemporalOffset int8  `json:"temporal_offset"`
	KeyFrameOffset int8  `json:"key_frame_offset"`
	RandomAccess   bool  `json:"random_access"`
}

func dumpIndex(tr *mxf.TrackReader) error {
	rows := make([]indexRow, 0, tr.Duration())
	for pos := int64(0); pos < tr.Duration(); pos++ {
		entry, ok := tr.IndexEntry(pos)
		if !ok {
			continue
		}
		rows = append(rows, indexRow{
			Position:       pos,
			TemporalOffset: entry.TemporalOffset,
			KeyFrameOffset: entry.KeyFrameOffset,
			RandomAccess:   entry.Flags.RandomAccess,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
