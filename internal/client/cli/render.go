package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/citybreaks/internal/client/engine"
	"github.com/dmitrijs2005/citybreaks/internal/client/models"
)

const nameWidth = 16

func renderRecords(w io.Writer, records []models.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}
	row(w, "ID", "NAME", "START", "END", "PRICE", "TR", "VER", "STATUS")
	for _, r := range records {
		status := ""
		if r.Status.Pending() {
			status = r.Status.String()
		}
		row(w, r.ID, shorten(r.Name, nameWidth), r.StartDate, r.EndDate,
			fmt.Sprintf("%.2f", r.Price), yesNo(r.TransportIncluded), fmt.Sprint(r.Version), status)
	}
}

func row(w io.Writer, id, name, start, end, price, tr, ver, status string) {
	line := fmt.Sprintf("%-12s %-16s %-10s %-10s %10s %-3s %4s %s", id, name, start, end, price, tr, ver, status)
	fmt.Fprintln(w, strings.TrimRight(line, " "))
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func renderRecord(w io.Writer, r models.Record) {
	field := func(label, value string) { fmt.Fprintf(w, "%-12s%s\n", label+":", value) }
	field("ID", r.ID)
	field("Name", r.Name)
	field("Dates", r.StartDate+" .. "+r.EndDate)
	field("Price", fmt.Sprintf("%.2f", r.Price))
	field("Transport", yesNo(r.TransportIncluded))
	field("Version", fmt.Sprint(r.Version))
	field("Status", r.Status.String())
}

func renderConflict(w io.Writer, c models.ConflictSnapshot) {
	r := c.Remote
	fmt.Fprintf(w, "Conflict on %s: server has version %d, you edited version %d\n", r.ID, r.Version, c.LocalVersion)
	fmt.Fprintf(w, "  server copy: %s | %s .. %s | %.2f | transport %s\n",
		r.Name, r.StartDate, r.EndDate, r.Price, yesNo(r.TransportIncluded))
	fmt.Fprintln(w, "Use 'keep' to write your values over it or 'adopt' to take the server copy.")
}

func renderStatus(w io.Writer, user string, st engine.State, pending int) {
	mode := "offline"
	if st.Online {
		mode = "online"
	}
	if user == "" {
		user = "-"
	}
	field := func(label, value string) { fmt.Fprintf(w, "%-11s%s\n", label+":", value) }
	field("mode", mode)
	field("user", user)
	field("pending", fmt.Sprint(pending))
	field("replaying", yesNo(st.Replaying))
	if st.Notice != "" {
		field("notice", st.Notice)
	}
}
