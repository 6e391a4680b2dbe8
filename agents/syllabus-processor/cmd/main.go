package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"syllabus-stack/shared/config"
	"syllabus-stack/shared/scheduler"

	syllabusprocessor "syllabus-stack/agents/syllabus-processor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	once := false
	if len(args) > 0 && args[0] == "--once" {
		once = true
		args = args[1:]
	}

	// Positional overrides: syllabus path and output path
	if len(args) > 0 {
		cfg.Processor.PDFPath = args[0]
		once = true
	}
	if len(args) > 1 {
		cfg.Processor.OutputPath = args[1]
	}

	agent := syllabusprocessor.NewAgent(cfg)
	s := scheduler.New(cfg, agent)

	if once {
		fmt.Println("Running once...")
		if err := agent.Initialize(); err != nil {
			log.Fatalf("Failed to initialize agent: %v", err)
		}

		if err := s.RunOnce(ctx); err != nil {
			log.Fatalf("Failed to run: %v", err)
		}
		return
	}

	fmt.Println("Starting scheduler...")
	if err := s.Start(ctx); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}
