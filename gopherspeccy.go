// This file is part of GopherSpeccy.
//
// GopherSpeccy is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherSpeccy is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherSpeccy.  If not, see <https://www.gnu.org/licenses/>.

// GopherSpeccy is an emulator for the ZX Spectrum family. This is the
// command line entry point: a headless runner, the interactive debugger,
// and a tape block lister. A GUI front end is a separate concern that
// drives the hardware package the same way these commands do.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jetsetilly/gopherspeccy/debugger"
	"github.com/jetsetilly/gopherspeccy/debugger/script"
	"github.com/jetsetilly/gopherspeccy/debugger/terminal"
	"github.com/jetsetilly/gopherspeccy/debugger/terminal/colorterm"
	"github.com/jetsetilly/gopherspeccy/debugger/terminal/plainterm"
	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
	"github.com/jetsetilly/gopherspeccy/logger"
	"github.com/jetsetilly/gopherspeccy/tape"
)

// options shared by the run and debug commands.
type machineOptions struct {
	machine  string
	roms     []string
	tapeFile string
	dckFile  string
	divide   string
	plusdROM string
	melodik  bool
	verbose  bool
}

func (opts *machineOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.machine, "machine", "m", "48", "machine to emulate: "+strings.Join(models.IDs(), " "))
	cmd.Flags().StringSliceVar(&opts.roms, "rom", nil, "system ROM image(s), in slot order")
	cmd.Flags().StringVarP(&opts.tapeFile, "tape", "t", "", "TAP/TZX/WAV/MP3 tape to insert")
	cmd.Flags().StringVar(&opts.dckFile, "dck", "", "Timex DCK cartridge to insert")
	cmd.Flags().StringVar(&opts.divide, "divide", "", "DivIDE EPROM image to attach")
	cmd.Flags().StringVar(&opts.plusdROM, "plusd", "", "+D ROM image to attach")
	cmd.Flags().BoolVar(&opts.melodik, "melodik", false, "attach a Melodik AY interface")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "echo the log as it happens")
}

// build assembles the machine the options describe.
func (opts *machineOptions) build() (*hardware.Spectrum, error) {
	if opts.verbose {
		logger.SetEcho(os.Stderr)
	}

	model := models.GetByID(opts.machine)
	if model == nil {
		return nil, fmt.Errorf("unknown machine %q (have: %s)", opts.machine, strings.Join(models.IDs(), " "))
	}

	spec := hardware.NewSpectrum(model)

	for i, filename := range opts.roms {
		image, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		spec.LoadROM(i, image)
	}

	if opts.dckFile != "" {
		image, err := os.ReadFile(opts.dckFile)
		if err != nil {
			return nil, err
		}
		if err := spec.Mem.LoadDCK(image); err != nil {
			return nil, err
		}
	}

	if opts.divide != "" {
		eprom, err := os.ReadFile(opts.divide)
		if err != nil {
			return nil, err
		}
		if _, err := spec.AttachDivIDE(eprom, nil); err != nil {
			return nil, err
		}
	}

	if opts.plusdROM != "" {
		rom, err := os.ReadFile(opts.plusdROM)
		if err != nil {
			return nil, err
		}
		spec.AttachPlusD(rom)
	}

	if opts.melodik {
		spec.AttachMelodik()
	}

	if opts.tapeFile != "" {
		blocks, err := readTapeFile(opts.tapeFile)
		if err != nil {
			return nil, err
		}
		spec.InsertTape(blocks)
	}

	return spec, nil
}

// readTapeFile decodes a tape in whatever format the extension names.
func readTapeFile(filename string) ([]tape.Block, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return tape.ReadWAV(f)
	case ".mp3":
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return tape.ReadMP3(f)
	case ".tzx":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		return tape.ReadTZX(data)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return tape.ReadTAP(data)
}

func runCommand() *cobra.Command {
	opts := &machineOptions{}
	var frames int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the emulation headless",
		RunE: func(_ *cobra.Command, _ []string) error {
			spec, err := opts.build()
			if err != nil {
				return err
			}

			done := 0
			spec.FrameEnd = func() { done++ }

			spec.Run(func() bool {
				return frames == 0 || done < frames
			})

			logger.Tail(os.Stderr, 10)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (0 = run forever)")

	return cmd
}

func debugCommand() *cobra.Command {
	opts := &machineOptions{}
	var plain bool

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "run the emulation under the interactive debugger",
		RunE: func(_ *cobra.Command, _ []string) error {
			spec, err := opts.build()
			if err != nil {
				return err
			}

			var term terminal.Terminal
			if !plain {
				term, err = colorterm.NewTerminal()
				if err != nil {
					plain = true
				}
			}
			if plain {
				term = plainterm.NewTerminal()
			}
			defer term.Close()

			dbg := debugger.NewDebugger(spec, term)
			dbg.ScriptRunner = script.NewRunner(dbg).Run

			return dbg.Loop()
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "use the plain terminal even on a tty")

	return cmd
}

func tapeinfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tapeinfo file...",
		Short: "list the blocks of TAP/TZX files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, filename := range args {
				blocks, err := readTapeFile(filename)
				if err != nil {
					return err
				}

				fmt.Printf("%s:\n", filename)
				for i, block := range blocks {
					detail := ""
					switch b := block.(type) {
					case *tape.ROMBlock:
						detail = fmt.Sprintf(" (%d bytes, pause %dms)", len(b.Data), b.Pause)
					case *tape.TurboBlock:
						detail = fmt.Sprintf(" (%d bytes)", len(b.Data))
					case *tape.PureDataBlock:
						detail = fmt.Sprintf(" (%d bytes)", len(b.Data))
					case *tape.PauseBlock:
						detail = fmt.Sprintf(" (%dms)", b.Length)
					case *tape.GroupStartBlock:
						detail = fmt.Sprintf(" %q", b.Name)
					case *tape.CommentBlock:
						detail = fmt.Sprintf(" %q", b.Text)
					}
					fmt.Printf("%3d: %s%s\n", i, block.Description(), detail)
				}
			}
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "gopherspeccy",
		Short:         "a ZX Spectrum family emulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(runCommand())
	root.AddCommand(debugCommand())
	root.AddCommand(tapeinfoCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
