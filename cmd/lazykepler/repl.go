package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fishsicles/lazykepler"
)

const prompt = "<lk> "

type commandKind uint8

const (
	cmdUnknown commandKind = iota
	cmdTime
	cmdDistance
	cmdCtime
	cmdLink
	cmdWhere
	cmdAccel
	cmdBodies
	cmdHelp
	cmdQuit
)

var commandNames = map[string]commandKind{
	"time":     cmdTime,
	"distance": cmdDistance,
	"ctime":    cmdCtime,
	"link":     cmdLink,
	"where":    cmdWhere,
	"accel":    cmdAccel,
	"bodies":   cmdBodies,
	"help":     cmdHelp,
	"quit":     cmdQuit,
}

var commandAliases = map[string]string{
	"d":      "distance",
	"dist":   "distance",
	"quit()": "quit",
	"exit":   "quit",
}

// parseCommand splits a prompt line into its command and arguments.
func parseCommand(line string) (commandKind, string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return cmdUnknown, "", nil
	}
	name := strings.ToLower(fields[0])
	if alias, ok := commandAliases[name]; ok {
		name = alias
	}
	return commandNames[name], name, fields[1:]
}

// session holds the state of the prompt: the catalog and the current query time.
type session struct {
	catalog *lazykepler.Catalog
	clock   lazykepler.Clock
	t       float64
	out     io.Writer
}

func newSession(catalog *lazykepler.Catalog, clock lazykepler.Clock, out io.Writer) *session {
	return &session{catalog: catalog, clock: clock, out: out}
}

// setTime accepts a number in the time unit or a calendar date.
func (s *session) setTime(arg string) error {
	if t, err := strconv.ParseFloat(arg, 64); err == nil {
		if err := lazykepler.CheckTime(t); err != nil {
			return err
		}
		s.t = t
		return nil
	}
	dt, err := lazykepler.ParseDate(arg)
	if err != nil || dt.IsZero() {
		return fmt.Errorf("time must be a numerical value in %s or a date", s.catalog.Units().Time)
	}
	t, err := s.clock.At(dt)
	if err != nil {
		return err
	}
	s.t = t
	return nil
}

func (s *session) showTime() {
	unit := s.catalog.Units().Time
	if dt, err := s.clock.Date(s.t); err == nil {
		fmt.Fprintf(s.out, "current time is %g %s (%s)\n", s.t, unit, dt.Format("2006-01-02 15:04:05 MST"))
		return
	}
	fmt.Fprintf(s.out, "current time is %g %s\n", s.t, unit)
}

func (s *session) where(body string) error {
	body = lazykepler.NormalizeName(body)
	R, err := s.catalog.Position(body, s.t)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s is at %s\n", body, formatPosition(R))
	return nil
}

func (s *session) distance(a, b string) error {
	a, b = lazykepler.NormalizeName(a), lazykepler.NormalizeName(b)
	d, err := s.catalog.Distance(a, b, s.t)
	if err != nil {
		return err
	}
	if b == "" {
		b = s.catalog.Origin()
	}
	fmt.Fprintf(s.out, "distance between %s and %s is %.4f %s\n", a, b, d, s.catalog.Units().Dist)
	return nil
}

func (s *session) ctime(a, b string) error {
	a, b = lazykepler.NormalizeName(a), lazykepler.NormalizeName(b)
	delay, err := s.catalog.CommDelay(a, b, s.t)
	if err != nil {
		return err
	}
	if b == "" {
		b = s.catalog.Origin()
	}
	fmt.Fprintf(s.out, "lightspeed delay between %s and %s is %s\n", a, b, formatDelay(delay, s.catalog.Units().Time))
	return nil
}

func (s *session) link(a, b string) error {
	l, err := s.catalog.Link(a, b, s.t)
	if err != nil {
		return err
	}
	units := s.catalog.Units()
	fmt.Fprintf(s.out, "range between %s and %s is %.4f %s, changing by %.6g %s/%s\n", l.From, l.To, l.Range, units.Dist, l.RangeRate, units.Dist, units.Time)
	return nil
}

// linkCSV prints samples links, step apart from the current time.
func (s *session) linkCSV(a, b string, samples int, step float64) error {
	if samples < 1 {
		return fmt.Errorf("invalid number of samples %d", samples)
	}
	fmt.Fprintln(s.out, lazykepler.LinkCSVHeader)
	for i := 0; i < samples; i++ {
		l, err := s.catalog.Link(a, b, s.t+float64(i)*step)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, l.CSV())
	}
	return nil
}

func (s *session) accel(body string) error {
	body = lazykepler.NormalizeName(body)
	g, err := s.catalog.Acceleration(body, s.t)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "acceleration of %s towards %s is %.6g g\n", body, s.catalog.Origin(), g)
	return nil
}

func (s *session) bodies() {
	for _, name := range s.catalog.Names() {
		o, _ := s.catalog.Orbit(name)
		fmt.Fprintf(s.out, "%-10s %s\n", name, o)
	}
}

func (s *session) help() {
	names := make([]string, 0, len(commandNames))
	for name := range commandNames {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(s.out, "Supported commands are: %s\n", strings.Join(names, ", "))
}

// exec runs one prompt line and returns whether the session is over.
func (s *session) exec(line string) bool {
	kind, name, args := parseCommand(line)
	var err error
	switch kind {
	case cmdQuit:
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case cmdHelp:
		s.help()
	case cmdBodies:
		s.bodies()
	case cmdTime:
		if len(args) == 0 {
			s.showTime()
		} else {
			err = s.setTime(strings.Join(args, " "))
		}
	case cmdWhere:
		if err = arity(args, 1, 1); err == nil {
			err = s.where(args[0])
		}
	case cmdAccel:
		if err = arity(args, 1, 1); err == nil {
			err = s.accel(args[0])
		}
	case cmdDistance:
		if err = arity(args, 1, 2); err == nil {
			err = s.distance(args[0], optional(args, 1))
		}
	case cmdCtime:
		if err = arity(args, 1, 2); err == nil {
			err = s.ctime(args[0], optional(args, 1))
		}
	case cmdLink:
		if err = arity(args, 1, 2); err == nil {
			err = s.link(args[0], optional(args, 1))
		}
	default:
		if name != "" {
			fmt.Fprintf(s.out, "ERROR: no command %s. Use 'help' for command list\n", name)
		}
	}
	var nf *lazykepler.NotFoundError
	switch {
	case err == nil:
	case errors.As(err, &nf):
		fmt.Fprintf(s.out, "no such body: %s\n", nf.Body)
	default:
		fmt.Fprintf(s.out, "error executing command %s: %s\n", name, err)
	}
	return false
}

// repl reads commands from in until quit or end of input.
func (s *session) repl(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if s.exec(scanner.Text()) {
			return nil
		}
	}
}

func arity(args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("expected %d argument(s), got %d", lo, len(args))
		}
		return fmt.Errorf("expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	return nil
}

func formatPosition(R []float64) string {
	return fmt.Sprintf("(%.3f,%.3f,%.3f)", R[0], R[1], R[2])
}

// formatDelay prints day-unit delays as HH:MM:SS.sss.
func formatDelay(delay float64, unit string) string {
	if !strings.EqualFold(unit, "day") {
		return fmt.Sprintf("%.4f %s", delay, unit)
	}
	hours := delay * 24
	h := int(hours)
	minutes := (hours - float64(h)) * 60
	m := int(minutes)
	sec := (minutes - float64(m)) * 60
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, sec)
}
