package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/thushan/traigo/theme"
)

var (
	Name        = "traigo"
	Authors     = "Thushan Fernando"
	Description = "Taiwan Railway Timetable Companion"
	Version     = "v0.0.1"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/thushan/traigo"
	GithubHomeUri   = "https://github.com/thushan/traigo"
	GithubLatestUri = "https://github.com/thushan/traigo/releases/latest"
)

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)
	padBuffer := fmt.Sprintf("%*s", 2, "")

	var b strings.Builder

	b.WriteString(theme.ColourSplash(`
╔──────────────────────────────────────────────────────────╗
│                                                          │
│  ████████╗██████╗  █████╗ ██╗ ██████╗  ██████╗    🚆     │
│  ╚══██╔══╝██╔══██╗██╔══██╗██║██╔════╝ ██╔═══██╗          │
│     ██║   ██████╔╝███████║██║██║  ███╗██║   ██║  臺鐵    │
│     ██║   ██╔══██╗██╔══██║██║██║   ██║██║   ██║          │
│     ██║   ██║  ██║██║  ██║██║╚██████╔╝╚██████╔╝          │
│     ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝ ╚═════╝  ╚═════╝           │` + "\n"))

	b.WriteString(theme.ColourSplash("│  "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString(padBuffer)
	b.WriteString(theme.ColourSplash("                 │\n"))
	b.WriteString(theme.ColourSplash("╚──────────────────────────────────────────────────────────╝"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
