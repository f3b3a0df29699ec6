package cmd

import (
	"fmt"
	"sort"
	"strings"

	"git-cai/internal/config"
	"git-cai/internal/editor"
	"git-cai/internal/prompt"
)

func runList(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: git cai --list <topic>")
		fmt.Println()
		fmt.Println("Topics:")
		fmt.Println("  language  supported commit message languages")
		fmt.Println("  style     supported commit message tone styles")
		fmt.Println("  editor    recognized editors and how they are launched")
		return nil
	}

	switch args[0] {
	case "language":
		listLanguages()
	case "style":
		listStyles()
	case "editor":
		listEditors()
	default:
		return fmt.Errorf("unknown list topic '%s' (expected language, style, or editor)", args[0])
	}
	return nil
}

func listLanguages() {
	codes := make([]string, 0, len(config.Languages))
	for code := range config.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Println("Supported languages (set 'language' in cai_config.yml):")
	for _, code := range codes {
		fmt.Printf("  %s - %s\n", code, config.Languages[code])
	}
}

func listStyles() {
	names := make([]string, 0, len(prompt.Styles))
	for name := range prompt.Styles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Supported tone styles (set 'style' in cai_config.yml):")
	for _, name := range names {
		s := prompt.Styles[name]
		fmt.Printf("  %s: %s\n", name, s.Description)
		fmt.Printf("    e.g. %q\n", s.Example)
	}
	fmt.Println("  none: no tone instruction is added")
}

func listEditors() {
	fmt.Println("Terminal editors (block until you close the file):")
	fmt.Printf("  %s\n", strings.Join(editor.TerminalEditors, ", "))
	fmt.Println()
	fmt.Println("GUI editors (launched with a wait flag):")
	gui := editor.GUIEditors()
	names := make([]string, 0, len(gui))
	for name := range gui {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s %s\n", name, gui[name])
	}
	fmt.Println()
	fmt.Println("The editor is resolved from git's GIT_EDITOR, then VISUAL, then EDITOR.")
}
