package core

import (
	"strings"

	"runepkg/internal/types"
)

type inventoryEntry struct {
	Name    string
	Version string
}

// parseInventory reads "name version" lines as printed by pacman -Q and
// its filtered variants. Malformed lines are skipped.
func parseInventory(lines []string) []inventoryEntry {
	var out []inventoryEntry
	seen := map[string]bool{}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		out = append(out, inventoryEntry{Name: fields[0], Version: fields[1]})
	}
	return out
}

// parseRepoUpdates reads "name local -> remote" lines from pacman -Qu.
// Packages held back by IgnorePkg are printed with an "[ignored]" suffix
// and dropped here.
func parseRepoUpdates(lines []string) []types.RepoUpdate {
	var out []types.RepoUpdate
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[2] != "->" {
			continue
		}
		if len(fields) > 4 && fields[4] == "[ignored]" {
			continue
		}
		out = append(out, types.RepoUpdate{
			Name:         fields[0],
			LocalVersion: fields[1],
			RepoVersion:  fields[3],
		})
	}
	return out
}

// infoBlock is one package section of pacman -Qi / -Si output.
type infoBlock map[string]string

// parseInfoBlocks splits "Key : Value" output into per-package blocks
// keyed by the Name field. Indented continuation lines extend the
// previous value.
func parseInfoBlocks(lines []string) map[string]infoBlock {
	blocks := map[string]infoBlock{}
	current := infoBlock{}
	lastKey := ""
	flush := func() {
		if name := current["Name"]; name != "" {
			if _, exists := blocks[name]; !exists {
				blocks[name] = current
			}
		}
		current = infoBlock{}
		lastKey = ""
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && lastKey != "" {
			current[lastKey] = strings.TrimSpace(current[lastKey] + " " + strings.TrimSpace(line))
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "Name" && current["Name"] != "" {
			flush()
		}
		current[key] = strings.TrimSpace(value)
		lastKey = key
	}
	flush()
	return blocks
}

// description drops pacman's "None" placeholder.
func (b infoBlock) description() string {
	value := b["Description"]
	if value == "None" {
		return ""
	}
	return value
}
