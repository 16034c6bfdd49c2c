package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"patchbox/src/dsp"
	"patchbox/src/tui"
)

var (
	patchFlag  = flag.String("patch", "", "patch to select at startup")
	presetFlag = flag.String("preset", "", "JSON preset file to load")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine := dsp.New()
	defer engine.Close()

	if *presetFlag != "" {
		data, err := os.ReadFile(*presetFlag)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		engine.ApplyJSON(data)
	}
	if *patchFlag != "" {
		engine.CommandCh <- []string{"patch", *patchFlag}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	program := tea.NewProgram(tui.NewModel(engine))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Start(ctx)
	})
	g.Go(func() error {
		for data := range dsp.ListenToMidiIn(ctx) {
			engine.AddMidiEvent(data)
		}
		return nil
	})
	g.Go(func() error {
		_, err := program.Run()
		cancel()
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("error: %v\n", err)
	}
	log.Println("main() ended.")
}
