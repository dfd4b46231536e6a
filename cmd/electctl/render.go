// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/danielhkuo/quickly-vote/models"
)

var (
	heading = color.New(color.FgYellow)
	good    = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgCyan)
)

func renderState(w io.Writer, s models.ElectionState) {
	heading.Fprintf(w, "Phase: %s\n", s.Phase)
	if s.StartedAt != nil {
		fmt.Fprintf(w, "Started:  %s (%s)\n", s.StartedAt.Format(time.RFC3339), humanize.Time(*s.StartedAt))
	}
	if s.Deadline != nil {
		fmt.Fprintf(w, "Deadline: %s (%s)\n", s.Deadline.Format(time.RFC3339), humanize.Time(*s.Deadline))
	}
	if s.EndedAt != nil {
		fmt.Fprintf(w, "Ended:    %s (%s)\n", s.EndedAt.Format(time.RFC3339), humanize.Time(*s.EndedAt))
	}
}

func renderStatus(w io.Writer, s models.ElectionStatus) {
	renderState(w, s.ElectionState)
	fmt.Fprintf(w, "Votes: %s  Candidates: %d\n", humanize.Comma(int64(s.TotalVotes)), s.TotalCandidates)
}

func renderTally(w io.Writer, t models.TallyResponse) {
	if t.Provisional {
		warn.Fprintf(w, "Provisional tally (%s)\n", t.Phase)
	} else {
		heading.Fprintln(w, "Final tally")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Candidate", "Party", "Votes", "%"})
	for _, e := range t.Results {
		table.Append([]string{
			strconv.FormatInt(e.CandidateID, 10),
			e.DisplayName,
			e.Party,
			humanize.Comma(int64(e.Count)),
			fmt.Sprintf("%.1f", e.Percentage),
		})
	}
	table.SetFooter([]string{"", "", "Total", humanize.Comma(int64(t.TotalVotes)), ""})
	table.Render()
}

func renderLeader(w io.Writer, l models.Leader) {
	label := "Winner"
	c := good
	if l.Provisional {
		label = "Leading (provisional)"
		c = warn
	}
	c.Fprintf(w, "%s: %s", label, l.DisplayName)
	if l.Party != "" {
		c.Fprintf(w, " (%s)", l.Party)
	}
	fmt.Fprintf(w, "\n%s of %s votes, %.1f%%\n",
		humanize.Comma(int64(l.Count)), humanize.Comma(int64(l.TotalVotes)), l.Percentage)
}

func renderStats(w io.Writer, s models.Stats) {
	heading.Fprintln(w, "Turnout")
	fmt.Fprintf(w, "%s of %s eligible voters voted (%.1f%%)\n",
		humanize.Comma(int64(s.TotalVotes)), humanize.Comma(int64(s.TotalEligible)), s.Turnout)
	if s.GroupBy == "" {
		return
	}

	heading.Fprintf(w, "\nBy %s\n", s.GroupBy)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Votes", "Eligible", "Turnout %"})
	for _, g := range s.Breakdown {
		table.Append([]string{
			g.Group,
			humanize.Comma(int64(g.Votes)),
			humanize.Comma(int64(g.Eligible)),
			fmt.Sprintf("%.1f", g.Turnout),
		})
	}
	table.Render()
}
