package tui

// renderFooter renders the bottom line: the last fetch error when there is
// one, otherwise either the full help text or a short hint.
func renderFooter(fetchErr error, showHelp bool) string {
	if fetchErr != nil {
		return StyleError.Render("fetch failed: " + fetchErr.Error())
	}
	if showHelp {
		return StyleDim.Render(helpText)
	}
	return StyleDim.Render("?: help  q: quit")
}
