package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/llm"
	"github.com/abhisek/quizwhiz/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter store.LLMEventFilter
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		filter.Purpose, _ = cmd.Flags().GetString("purpose")
		filter.Provider, _ = cmd.Flags().GetString("provider")
		filter.FailedOnly, _ = cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printEventList(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw output of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printEventDetail(cmd.OutOrStdout(), *e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage, failures and estimated cost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.LLMEventFilter{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		printStats(cmd.OutOrStdout(), events)
		return nil
	},
}

func printEventList(w io.Writer, events []store.LLMEventRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No model calls recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-3s  %-26s  %6s  %6s  %7s  %-9s  %s\n",
		"ID", "Time", "Purpose", "Try", "Model", "In", "Out", "Ms", "Cost", "Result")
	rule(w, 118)
	for _, e := range events {
		try := "-"
		if e.Attempt > 0 {
			try = strconv.Itoa(e.Attempt)
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-3s  %-26s  %6d  %6d  %7d  %-9s  %s\n",
			e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose, try,
			truncate(e.Model, 26), e.InputTokens, e.OutputTokens, e.LatencyMs,
			eventCost(e), outcome(e))
	}
}

// outcome is a one-word result column: ok, truncated, or the start of the
// error message.
func outcome(e store.LLMEventRecord) string {
	switch {
	case e.Success && e.StopReason == llm.StopMaxTokens:
		return "truncated"
	case e.Success:
		return "ok"
	default:
		return "ERR " + truncate(e.ErrorMessage, 40)
	}
}

func printEventDetail(w io.Writer, e store.LLMEventRecord) {
	field := func(name, format string, args ...any) {
		fmt.Fprintf(w, "%-10s %s\n", name+":", fmt.Sprintf(format, args...))
	}
	field("ID", "%d (sequence %d)", e.ID, e.Sequence)
	field("Time", "%s", e.Timestamp.Local().Format(timeLayout))
	field("Provider", "%s", e.Provider)
	field("Model", "%s", e.Model)
	field("Purpose", "%s", e.Purpose)
	if e.Attempt > 0 {
		field("Attempt", "%d", e.Attempt)
	}
	field("Tokens", "%d in / %d out", e.InputTokens, e.OutputTokens)
	field("Latency", "%dms", e.LatencyMs)
	field("Cost", "%s", eventCost(e))
	if e.StopReason != "" {
		field("Stop", "%s", e.StopReason)
	}
	if e.ErrorMessage != "" {
		field("Error", "%s", e.ErrorMessage)
	}

	section := func(title, body string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "── %s %s\n", title, strings.Repeat("─", 56-len(title)))
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(w, strings.TrimRight(body, "\n"))
	}
	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
}

func printStats(w io.Writer, events []store.LLMEventRecord) {
	byPurpose := usageBy(events, func(e store.LLMEventRecord) string { return e.Purpose })
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No model calls recorded.")
		return
	}

	fmt.Fprintln(w, "By purpose")
	rule(w, 80)
	fmt.Fprintf(w, "%-16s  %6s  %6s  %10s  %10s  %8s  %8s\n",
		"Purpose", "Calls", "Failed", "Input", "Output", "Avg ms", "Retries")
	rule(w, 80)
	var total usage
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%-16s  %6d  %6d  %10d  %10d  %8d  %8d\n",
			u.Key, u.Calls, u.Failed, u.InputTokens, u.OutputTokens, u.AvgLatencyMs(), u.Retries)
		total.add(u)
	}
	rule(w, 80)
	fmt.Fprintf(w, "%-16s  %6d  %6d  %10d  %10d  %8s  %8d\n",
		"TOTAL", total.Calls, total.Failed, total.InputTokens, total.OutputTokens, "", total.Retries)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated cost (USD)")
	rule(w, 80)
	var sum float64
	var unpriced []string
	for _, u := range usageBy(events, func(e store.LLMEventRecord) string { return e.Model }) {
		price := llm.LookupCost(u.Key)
		cost := "?"
		if price == nil {
			unpriced = append(unpriced, u.Key)
		} else {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			sum += c
			cost = formatCost(c)
		}
		fmt.Fprintf(w, "%-34s  %6d calls  %10d in  %10d out  %9s\n",
			truncate(u.Key, 34), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	rule(w, 80)
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (priced models only)"
	}
	fmt.Fprintf(w, "%-34s  %54s\n", label, formatCost(sum))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

// usage aggregates calls sharing one purpose or model. Retries counts calls
// made on a pipeline attempt after the first.
type usage struct {
	Key          string
	Calls        int
	Failed       int
	Retries      int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

func (u *usage) add(o usage) {
	u.Calls += o.Calls
	u.Failed += o.Failed
	u.Retries += o.Retries
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
	u.LatencyMs += o.LatencyMs
}

func (u usage) AvgLatencyMs() int64 {
	if u.Calls == 0 {
		return 0
	}
	return u.LatencyMs / int64(u.Calls)
}

// usageBy groups events by key, most calls first. Ties keep first-seen
// order.
func usageBy(events []store.LLMEventRecord, key func(store.LLMEventRecord) string) []usage {
	index := map[string]int{}
	var out []usage
	for _, e := range events {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, usage{Key: k})
		}
		u := &out[i]
		u.Calls++
		if !e.Success {
			u.Failed++
		}
		if e.Attempt > 1 {
			u.Retries++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		u.LatencyMs += e.LatencyMs
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Calls > out[j].Calls })
	return out
}

// eventCost prices one event, or "?" when the model is not in the table.
func eventCost(e store.LLMEventRecord) string {
	price := llm.LookupCost(e.Model)
	if price == nil {
		return "?"
	}
	return formatCost(price.Cost(e.InputTokens, e.OutputTokens))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (question-gen, topic-intro)")
	llmListCmd.Flags().String("provider", "", "Only calls to this provider")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
