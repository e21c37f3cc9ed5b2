package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	if m.ShowDetails {
		body = m.renderDetails()
	} else {
		body = m.renderList()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, int(tabCount))
	for t := Tab(0); t < tabCount; t++ {
		label := t.String()
		if kind, ok := t.listKind(); ok && m.Queries.List(kind).Loading {
			label += " " + m.spinner()
		}
		if t == m.Tab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}

	badge := styles.OnlineBadge
	if !m.Queries.Connected() {
		badge = styles.OfflineBadge
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(badge)-1)
	return left + strings.Repeat(" ", gap) + badge
}

// listHeight is the number of rows available for movies
func (m Model) listHeight() int {
	// header, footer, padding and the status line
	return max(3, m.Height-6)
}

func (m Model) renderList() string {
	rows := m.rows()
	var b strings.Builder

	if m.Filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	kind, isList := m.Tab.listKind()
	var st domain.ListState
	if isList {
		st = m.Queries.List(kind)
		if st.LastError != "" {
			b.WriteString(styles.ErrorStyle.Render(st.LastError + "  (r to retry)"))
			b.WriteString("\n")
		}
	}

	if len(rows) == 0 {
		switch {
		case isList && st.Loading:
			b.WriteString(styles.DimStyle.Render(m.spinner() + " loading..."))
		case m.filter.Value() != "":
			b.WriteString(styles.DimStyle.Render("no matches"))
		case !isList:
			b.WriteString(styles.DimStyle.Render("no favorites yet; press f on a movie"))
		default:
			b.WriteString(styles.DimStyle.Render("nothing here"))
		}
		return styles.BrowserStyle.Render(b.String())
	}

	height := m.listHeight()
	cursor := m.cursors[m.Tab]
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(len(rows), start+height)

	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(rows[i], i == cursor))
		b.WriteString("\n")
	}

	if isList && st.Loading && !st.Refreshing && st.Page > 0 {
		b.WriteString(styles.DimStyle.Render(m.spinner() + " loading more..."))
	} else if isList && !st.HasMore {
		b.WriteString(styles.DimStyle.Render("end of list"))
	}

	return styles.BrowserStyle.Render(b.String())
}

func (m Model) renderRow(r row, selected bool) string {
	star := styles.NotFavoriteStar
	if r.Movie.IsFavorite {
		star = styles.FavoriteStar
	}

	title := highlight(r.Movie.Title, r.MatchedIndexes)
	meta := ""
	if y := r.Movie.Year(); y > 0 {
		meta = fmt.Sprintf(" (%d)", y)
	}
	if r.Movie.VoteAverage > 0 {
		meta += fmt.Sprintf("  %.1f", r.Movie.VoteAverage)
	}

	line := star + " " + title + styles.DimStyle.Render(meta)
	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

// highlight styles the matched rune positions of s
func highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m Model) renderDetails() string {
	d, ok := m.Queries.Details(m.DetailsID)
	if !ok {
		if errMsg := m.Queries.DetailsError(m.DetailsID); errMsg != "" {
			return styles.DetailsStyle.Render(styles.ErrorStyle.Render(errMsg + "  (r to retry)"))
		}
		return styles.DetailsStyle.Render(styles.DimStyle.Render(m.spinner() + " loading details..."))
	}

	var b strings.Builder
	star := styles.NotFavoriteStar
	if d.IsFavorite {
		star = styles.FavoriteStar
	}
	b.WriteString(star + " " + styles.TitleStyle.Render(d.Title) + "\n")
	if d.Tagline != "" {
		b.WriteString(styles.SubtitleStyle.Render(d.Tagline) + "\n")
	}
	b.WriteString("\n")

	var facts []string
	if y := d.Year(); y > 0 {
		facts = append(facts, fmt.Sprint(y))
	}
	if rt := d.FormattedRuntime(); rt != "" {
		facts = append(facts, rt)
	}
	if genres := d.GenreNames(); len(genres) > 0 {
		facts = append(facts, strings.Join(genres, ", "))
	}
	if d.VoteAverage > 0 {
		facts = append(facts, fmt.Sprintf("%.1f/10 (%d votes)", d.VoteAverage, d.VoteCount))
	}
	b.WriteString(styles.AccentStyle.Render(strings.Join(facts, " · ")) + "\n\n")

	if d.Overview != "" {
		width := max(20, m.Width-8)
		b.WriteString(lipgloss.NewStyle().Width(width).Render(d.Overview) + "\n\n")
	}

	field := func(label, value string) {
		if value != "" {
			b.WriteString(styles.DimStyle.Render(label+": ") + value + "\n")
		}
	}
	field("Status", d.Status)
	field("Original title", d.OriginalTitle)
	if d.Budget > 0 {
		field("Budget", fmt.Sprintf("$%d", d.Budget))
	}
	if d.Revenue > 0 {
		field("Revenue", fmt.Sprintf("$%d", d.Revenue))
	}
	if d.Collection != nil {
		field("Collection", d.Collection.Name)
	}
	field("Homepage", d.Homepage)
	field("Poster", catalog.ImageURL(m.imageBase, "w500", d.PosterPath))

	if errMsg := m.Queries.DetailsError(m.DetailsID); errMsg != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(errMsg))
	}

	return styles.DetailsStyle.Render(b.String())
}

func (m Model) renderFooter() string {
	var status string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			status = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			status = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	helpView := m.help.ShortHelpView(Keys.ShortHelp())
	if m.ShowHelp {
		helpView = m.help.FullHelpView(Keys.FullHelp())
	}

	if status == "" {
		return styles.FooterStyle.Render(helpView)
	}
	return styles.FooterStyle.Render(status + "\n" + helpView)
}

func (m Model) spinner() string {
	return styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)]
}
