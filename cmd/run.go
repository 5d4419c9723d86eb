// Package main - run.go implements the demo and inspect commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/convoflow/context-engine/internal/config"
	"github.com/convoflow/context-engine/internal/engine"
	"github.com/convoflow/context-engine/internal/outbound"
	"github.com/convoflow/context-engine/internal/tokens"
)

// runDemo feeds the built-in sample conversation through the engine.
func runDemo(args []string) {
	cfg, query, _ := loadConfig(args)
	report(cfg, demoConversation(), query)
}

// runInspect feeds a user-supplied history file through the engine.
func runInspect(args []string) {
	cfg, query, rest := loadConfig(args)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: context-engine inspect [flags] HISTORY.json")
		os.Exit(1)
	}

	data, err := os.ReadFile(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading history: %v\n", err)
		os.Exit(1)
	}

	var history []engine.Message
	if err := json.Unmarshal(data, &history); err != nil {
		fmt.Fprintf(os.Stderr, "parsing history: %v\n", err)
		os.Exit(1)
	}

	report(cfg, history, query)
}

// report runs every engine operation over the history and prints the
// results.
func report(cfg *config.Config, history []engine.Message, query string) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}

	window := eng.SelectContext(history)
	transition := eng.ClassifyTransition(history, query)
	enhanced := eng.EnhanceQuery(query, window)
	summary := eng.Summarize(history)

	estimator := tokens.NewHeuristicEstimator(cfg.Tokens.Ratio)
	builder, err := outbound.NewBuilder(outbound.ProviderAnthropic, estimator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "builder: %v\n", err)
		os.Exit(1)
	}
	req, err := builder.Build("claude-sonnet-4-5", window, enhanced, 4096)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building request: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("History:          %d messages\n", len(history))
	fmt.Printf("Window:           %d entries\n", window.Len())
	fmt.Printf("Window IDs:       %s\n", strings.Join(window.IDs(), ", "))
	fmt.Printf("Transition:       %s\n", transition)
	fmt.Printf("Query:            %s\n", query)
	fmt.Printf("Enhanced:         %s\n", enhanced)
	fmt.Printf("Estimated tokens: %d\n", req.EstimatedTokens)
	if summary != "" {
		fmt.Printf("Summary:          %s\n", summary)
	}
}

// demoConversation is an 11-turn conversation drifting from machine
// learning to object detection.
func demoConversation() []engine.Message {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	turns := []struct {
		role    engine.Role
		content string
		images  []string
	}{
		{engine.RoleUser, "Can you explain what machine learning is?", nil},
		{engine.RoleAssistant, "Machine learning is a field where systems improve through experience:\n- supervised learning\n- unsupervised learning\n- reinforcement learning", nil},
		{engine.RoleUser, "How do neural networks fit into machine learning?", nil},
		{engine.RoleAssistant, "Neural networks are layered models loosely inspired by biological neurons. They excel when patterns are too complex for hand-written rules.", nil},
		{engine.RoleUser, "What does this picture show?", []string{"img://whiteboard-sketch"}},
		{engine.RoleAssistant, "The picture shows a convolutional network diagram, a staple of computer vision.", nil},
		{engine.RoleUser, "What is computer vision used for?", nil},
		{engine.RoleAssistant, "Computer vision powers image classification, object detection, and segmentation across many industries.", nil},
		{engine.RoleUser, "How does object detection actually work?", nil},
		{engine.RoleAssistant, "Object detection locates and labels objects in an image. Modern detectors predict bounding boxes and classes in one pass.", nil},
		{engine.RoleUser, "Tell me about YOLO specifically.", nil},
	}

	history := make([]engine.Message, len(turns))
	for i, t := range turns {
		history[i] = engine.Message{
			ID:        fmt.Sprintf("%d", i+1),
			Content:   t.content,
			Images:    t.images,
			Timestamp: base.Add(time.Duration(i) * 2 * time.Minute),
			Role:      t.role,
		}
	}
	return history
}
