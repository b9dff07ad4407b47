// Command gonenes runs the 6502 core against an iNES cartridge image,
// emitting a nestest-compatible trace line to stdout before every
// instruction. It stops on its own only at an unknown opcode (exit status
// 1); otherwise the caller interrupts it.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"gonenes/cartridge"
	"gonenes/cpu"
	"gonenes/mem"
	"gonenes/trace"
)

func main() {
	app := &cli.App{
		Name:      "gonenes",
		Usage:     "run the nestest 6502 core against an iNES ROM",
		ArgsUsage: "<rom.nes>",
		Action:    run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		cli.ShowAppHelp(c)
		return cli.Exit("", 1)
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.Exit(fmt.Sprintf("gonenes: %v", err), 1)
	}

	rom, err := cartridge.Load(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("gonenes: %v", err), 1)
	}

	bus := mem.NewBus()
	bus.AttachCartridge(rom)

	machine := cpu.NewCpu(bus)
	machine.Tracer = trace.Line
	machine.TraceOut = os.Stdout

	for {
		if err := machine.Step(); err != nil {
			return cli.Exit(fmt.Sprintf("gonenes: %v", err), 1)
		}
	}
}
