package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nootverse/noot/pkg/core"
)

type jsonEntry[T core.Record] struct {
	// Position is null for records without a trustworthy position.
	Position *int `json:"position"`
	Record   T    `json:"record"`
}

func printEntries[T core.Record](entries []core.Entry[T], asJSON bool, describe func(T) string) error {
	if asJSON {
		out := make([]jsonEntry[T], len(entries))
		for i, e := range entries {
			out[i].Record = e.Record
			if e.Addressable() {
				pos := e.Position
				out[i].Position = &pos
			}
		}
		return printJSON(out)
	}

	for _, e := range entries {
		pos := "-"
		if e.Addressable() {
			pos = strconv.Itoa(e.Position)
		}
		fmt.Printf("%s\t%s\n", pos, describe(e.Record))
	}
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "[" + strings.Join(tags, ", ") + "]"
}

func parsePosition(arg string) int {
	pos, err := strconv.Atoi(arg)
	if err != nil || pos < 0 {
		fatal("Invalid position", core.Wrap(core.KindValidation, "", "position must be a non-negative integer", err))
	}
	return pos
}

// confirm asks a yes/no question on in. Anything but y or yes is no.
func confirm(in io.Reader, prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
