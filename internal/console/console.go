// Package console implements the interactive todo shell over the
// in-memory store. Commands are explicit: the title/description split is
// a literal "|" delimiter, never guessed from word counts.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskify/internal/errs"
	"taskify/internal/memstore"
)

const shortIDLen = 8

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	tableStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

// Dispatcher parses one command line at a time and executes it against
// the store. It never terminates the loop on a bad command; errors are
// printed and the next line is read.
type Dispatcher struct {
	store *memstore.Store
	out   io.Writer
}

func NewDispatcher(store *memstore.Store, out io.Writer) *Dispatcher {
	return &Dispatcher{store: store, out: out}
}

// Run reads command lines until exit/quit or EOF.
func (d *Dispatcher) Run(in io.Reader) {
	fmt.Fprintln(d.out, headStyle.Render("taskify console"))
	fmt.Fprintln(d.out, dimStyle.Render("Type 'help' for available commands"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(d.out, "> ")
		if !scanner.Scan() {
			return
		}
		if !d.Dispatch(scanner.Text()) {
			return
		}
	}
}

// Dispatch executes one command line. It returns false only for
// exit/quit; errors keep the loop alive.
func (d *Dispatcher) Dispatch(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	command, args := splitCommand(line)
	switch command {
	case "add":
		d.cmdAdd(args)
	case "list":
		d.cmdList()
	case "complete":
		d.cmdComplete(args)
	case "update":
		d.cmdUpdate(args)
	case "delete":
		d.cmdDelete(args)
	case "help":
		d.cmdHelp(args)
	case "exit", "quit":
		return false
	default:
		fmt.Fprintln(d.out, errStyle.Render(fmt.Sprintf("Error: unknown command %q", command)))
		fmt.Fprintln(d.out, hintStyle.Render("Type 'help' for available commands"))
	}
	return true
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return command, ""
	}
	return command, strings.TrimSpace(parts[1])
}

// splitFields separates "<title> | <description>" on the first pipe.
// No pipe means no description.
func splitFields(args string) (title, description string, hasDescription bool) {
	before, after, found := strings.Cut(args, "|")
	if !found {
		return strings.TrimSpace(before), "", false
	}
	return strings.TrimSpace(before), strings.TrimSpace(after), true
}

func (d *Dispatcher) cmdAdd(args string) {
	if args == "" {
		fmt.Fprintln(d.out, errStyle.Render("Error: task title is required"))
		fmt.Fprintln(d.out, hintStyle.Render("Usage: add <title> [| <description>]"))
		return
	}

	title, description, _ := splitFields(args)
	task, err := d.store.Add(title, description)
	if err != nil {
		d.printError(err)
		return
	}

	fmt.Fprintf(d.out, "%s %s %s\n",
		okStyle.Render("Task created:"),
		idStyle.Render(shortID(task.ID)),
		task.Title)
	if task.Description != "" {
		fmt.Fprintln(d.out, dimStyle.Render("  Description: "+task.Description))
	}
}

func (d *Dispatcher) cmdList() {
	tasks := d.store.List()
	if len(tasks) == 0 {
		fmt.Fprintln(d.out, hintStyle.Render("No tasks yet. Use 'add' to create one."))
		return
	}

	fmt.Fprintln(d.out, tableStyle.Render(renderTable(tasks)))
	fmt.Fprintln(d.out, dimStyle.Render(fmt.Sprintf("Total: %d task(s)", len(tasks))))
}

func (d *Dispatcher) cmdComplete(args string) {
	if args == "" {
		fmt.Fprintln(d.out, errStyle.Render("Error: task id is required"))
		fmt.Fprintln(d.out, hintStyle.Render("Usage: complete <task_id>"))
		return
	}

	task, err := d.store.ToggleCompletion(args)
	if err != nil {
		d.printError(err)
		return
	}

	status := "pending"
	if task.Completed {
		status = "complete"
	}
	fmt.Fprintf(d.out, "%s %s - %s\n", okStyle.Render("Task marked:"), status, task.Title)
}

func (d *Dispatcher) cmdUpdate(args string) {
	id, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	if id == "" || rest == "" {
		fmt.Fprintln(d.out, errStyle.Render("Error: task id and new title are required"))
		fmt.Fprintln(d.out, hintStyle.Render("Usage: update <task_id> <new_title> [| <new_description>]"))
		return
	}

	title, description, hasDescription := splitFields(rest)
	upd := memstore.Update{}
	if title != "" {
		upd.Title = &title
	}
	if hasDescription {
		upd.Description = &description
	}

	task, err := d.store.Update(id, upd)
	if err != nil {
		d.printError(err)
		return
	}

	fmt.Fprintf(d.out, "%s %s\n", okStyle.Render("Task updated:"), task.Title)
	if hasDescription {
		fmt.Fprintln(d.out, dimStyle.Render("  Description: "+task.Description))
	}
}

func (d *Dispatcher) cmdDelete(args string) {
	if args == "" {
		fmt.Fprintln(d.out, errStyle.Render("Error: task id is required"))
		fmt.Fprintln(d.out, hintStyle.Render("Usage: delete <task_id>"))
		return
	}

	removed, err := d.store.Delete(args)
	if err != nil {
		d.printError(err)
		return
	}
	if !removed {
		fmt.Fprintln(d.out, errStyle.Render(fmt.Sprintf("Error: task %q not found", args)))
		return
	}
	fmt.Fprintln(d.out, okStyle.Render("Task deleted"))
}

var commandHelp = map[string]string{
	"add": "add <title> [| <description>] - Create a new task\n" +
		"  Example: add Buy groceries | milk, eggs, bread\n" +
		"  The '|' separates the title from the optional description.",
	"list": "list - Show all tasks with id, status, title and description",
	"complete": "complete <task_id> - Toggle completion\n" +
		"  The id can be the full UUID or any unambiguous prefix.",
	"update": "update <task_id> <new_title> [| <new_description>] - Update a task\n" +
		"  Omitted fields keep their previous value.",
	"delete": "delete <task_id> - Delete a task permanently",
	"help":   "help [command] - Show help for one command or all of them",
}

func (d *Dispatcher) cmdHelp(args string) {
	if args != "" {
		if text, ok := commandHelp[strings.ToLower(args)]; ok {
			fmt.Fprintln(d.out, hintStyle.Render(text))
		} else {
			fmt.Fprintln(d.out, hintStyle.Render(fmt.Sprintf("No help available for %q", args)))
		}
		return
	}

	fmt.Fprintln(d.out, headStyle.Render("Available commands:"))
	for _, name := range []string{"add", "list", "complete", "update", "delete", "help"} {
		fmt.Fprintln(d.out, "  "+strings.SplitN(commandHelp[name], "\n", 2)[0])
	}
	fmt.Fprintln(d.out, dimStyle.Render("Type 'exit' or 'quit' to leave"))
}

func (d *Dispatcher) printError(err error) {
	if errs.IsAmbiguousID(err) {
		fmt.Fprintln(d.out, errStyle.Render("Error: "+err.Error()))
		fmt.Fprintln(d.out, hintStyle.Render("Use a longer id prefix"))
		return
	}
	fmt.Fprintln(d.out, errStyle.Render("Error: "+err.Error()))
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func renderTable(tasks []memstore.Task) string {
	const (
		idWidth     = 10
		statusWidth = 10
	)

	var b strings.Builder
	b.WriteString(headStyle.Render(pad("ID", idWidth) + pad("Status", statusWidth) + "Title"))
	for _, task := range tasks {
		status := "pending"
		if task.Completed {
			status = "done"
		}
		row := idStyle.Render(pad(shortID(task.ID), idWidth)) + pad(status, statusWidth) + task.Title
		if task.Description != "" {
			row += dimStyle.Render("  (" + task.Description + ")")
		}
		b.WriteString("\n" + row)
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
