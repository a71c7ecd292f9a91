package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"family-planner/internal/model"
	"family-planner/internal/schedule"
)

func escape(s string) string {
	return html.EscapeString(s)
}

// formatOccurrence renders a single task line for chat output.
func formatOccurrence(occ schedule.Occurrence, icons, names map[string]string) string {
	task := occ.Task

	check := "⬜"
	if task.Completed {
		check = "✅"
	}

	var sb strings.Builder
	sb.WriteString(check)
	sb.WriteByte(' ')
	if task.CategoryID != nil {
		if icon := icons[*task.CategoryID]; icon != "" {
			sb.WriteString(icon)
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(escape(task.Title))

	if task.TaskTime != nil {
		sb.WriteString(fmt.Sprintf(" — 🕐 %s", *task.TaskTime))
	}
	if name := assigneeName(task, names); name != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", escape(name)))
	}
	return sb.String()
}

func assigneeName(task model.Task, names map[string]string) string {
	if task.AssignedTo != nil {
		return names[*task.AssignedTo]
	}
	if task.HelperID != nil {
		if name := names[*task.HelperID]; name != "" {
			return name + " 🤝"
		}
	}
	return ""
}

// renderDigest builds the morning digest text: today's plan plus the open
// tasks of the next three days. Returns "" when there is nothing to say.
func renderDigest(tasks []model.Task, today time.Time, icons, names map[string]string) string {
	todayOccs := schedule.ForDate(tasks, today)
	upcoming := schedule.Upcoming(tasks, today, 3)

	if len(todayOccs) == 0 && len(upcoming) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("☀️ <b>Good morning! Plan for %s</b>\n\n", today.Format("Monday, Jan 2")))

	if len(todayOccs) == 0 {
		sb.WriteString("Nothing planned for today. 🎉\n")
	} else {
		for _, occ := range todayOccs {
			sb.WriteString(formatOccurrence(occ, icons, names))
			sb.WriteByte('\n')
		}
	}

	if len(upcoming) > 0 {
		sb.WriteString("\n🔜 <b>Coming up:</b>\n")
		for _, day := range upcoming {
			sb.WriteString(fmt.Sprintf("<b>%s</b>: ", dayLabel(day.Date, today)))
			titles := make([]string, 0, len(day.Occurrences))
			for _, occ := range day.Occurrences {
				titles = append(titles, escape(occ.Task.Title))
			}
			sb.WriteString(strings.Join(titles, ", "))
			sb.WriteByte('\n')
		}
	}

	return strings.TrimSpace(sb.String())
}

func dayLabel(date, today time.Time) string {
	switch schedule.FormatDate(date) {
	case schedule.FormatDate(today):
		return "Today"
	case schedule.FormatDate(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return date.Format("Monday")
	}
}
