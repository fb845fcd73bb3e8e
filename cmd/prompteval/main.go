// Command prompteval scores and corrects prompts from the command line.
//
// Usage:
//
//	prompteval score "write code"
//	prompteval correct -acceptance "keys: input, output" "write code"
//	prompteval seed examples.jsonl
//
// Configuration comes from the environment (PROMPTEVAL_* variables and
// GEMINI_API_KEY). Results are printed as JSON on stdout.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	prompteval "github.com/UnfitBeard/prompt-eval"
	"github.com/UnfitBeard/prompt-eval/retrieval"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "score":
		err = runScore(ctx, os.Args[2:])
	case "correct":
		err = runCorrect(ctx, os.Args[2:])
	case "seed":
		err = runSeed(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  prompteval score <prompt>
  prompteval correct [-acceptance <criteria>] <prompt>
  prompteval seed <examples.jsonl>`)
}

func runScore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("score takes exactly one prompt argument")
	}

	app, err := prompteval.NewFromEnv()
	if err != nil {
		return err
	}

	eval, err := app.Score(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(eval)
}

func runCorrect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("correct", flag.ExitOnError)
	acceptance := fs.String("acceptance", "", "acceptance criteria the corrected prompt must mention")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("correct takes exactly one prompt argument")
	}

	app, err := prompteval.NewFromEnv()
	if err != nil {
		return err
	}

	result, err := app.Correct(ctx, fs.Arg(0), *acceptance)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// runSeed ingests reference examples from a JSONL file: one
// {"content": ..., "metadata": {...}} object per line.
func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("seed takes exactly one file argument")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	var examples []retrieval.Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var ex retrieval.Example
		if err := json.Unmarshal(text, &ex); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if ex.Content == "" {
			return fmt.Errorf("line %d: missing content", line)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	app, err := prompteval.NewFromEnv()
	if err != nil {
		return err
	}
	if err := app.Seed(ctx, examples); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "seeded %d examples (store now holds %d)\n", len(examples), app.StoreCount())
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
