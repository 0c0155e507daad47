package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/qudurat/qudurat/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██╗   ██╗██████╗ ██╗   ██╗██████╗  █████╗ ████████╗
 ██╔═══██╗██║   ██║██╔══██╗██║   ██║██╔══██╗██╔══██╗╚══██╔══╝
 ██║   ██║██║   ██║██║  ██║██║   ██║██████╔╝███████║   ██║
 ██║▄▄ ██║██║   ██║██║  ██║██║   ██║██╔══██╗██╔══██║   ██║
 ╚██████╔╝╚██████╔╝██████╔╝╚██████╔╝██║  ██║██║  ██║   ██║
  ╚══▀▀═╝  ╚═════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝`

const bannerCompact = "ق د ر ا ت"

// RenderBanner returns the banner styled in the primary color, or a
// compact fallback for terminals narrower than 64 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 64 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
