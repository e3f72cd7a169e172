// Package cmdline is a scaffold for command-line programs.
//
// A program implements Utility.  Execute walks the arguments, hands
// each declared option to ParseOption (which pulls any value it needs
// from the ArgIterator), hands the rest to ParsePostOptions, and then
// calls Run.
//
// Options look like "-x", "--long" or "--long=value".  "--" ends the
// options, and "-" by itself is a parameter.  Short options can't be
// bundled ("-xv" is an error).  Every command also understands "-?"
// and "--help", which make Execute return ErrHelp, and
// "--log-level LEVEL", which sets the level of every logger in the
// process.
//
// An argument "@file" is replaced by the words in file.  See
// ExpandResponseFiles.
package cmdline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/text"
)

var log = logging.New("cmdline")

// ErrHelp is returned by Execute when the user asked for help.
var ErrHelp = errors.New("help requested")

// UsageError is a problem with how the command was invoked.
type UsageError struct {
	Program string
	Msg     string
}

func (e *UsageError) Error() string {
	if e.Program == "" {
		return e.Msg
	}
	return e.Program + ": " + e.Msg
}

// Usagef makes a *UsageError.  Utilities return these from
// ParseOption and ParsePostOptions.
func Usagef(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// Utility is what a command-line program implements.
type Utility interface {
	// ParseOption is called for each option declared in
	// UsageInfo.  Exactly one of short and long might be zero.
	// The option's value, if any, is it.NextArg(...).
	ParseOption(short rune, long string, it *ArgIterator) error

	// ParsePostOptions is called with the arguments that follow
	// the options.  Anything left unconsumed is an error.
	ParsePostOptions(it *ArgIterator) error

	// Run does the work.
	Run(ctx context.Context) error

	// UsageInfo describes the options and parameters.  Called
	// once per Execute.
	UsageInfo() *UsageInfo
}

func optionName(short rune, long string) string {
	if long != "" {
		return "--" + long
	}
	return "-" + string(short)
}

// Execute parses args for u and then runs it.
func Execute(ctx context.Context, program string, u Utility, args []string) error {
	err := execute(ctx, u, args)
	var ue *UsageError
	if errors.As(err, &ue) && ue.Program == "" {
		ue.Program = program
	}
	return err
}

func execute(ctx context.Context, u Utility, args []string) error {
	args, err := ExpandResponseFiles(args)
	if err != nil {
		return err
	}

	usage := u.UsageInfo()
	if usage == nil {
		usage = NewUsageInfo()
	}

	it := NewArgIterator(args)

	for it.HasNext() {
		arg, _ := it.Peek()
		if arg == "--" {
			it.Next()
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}
		it.Next()

		var (
			opt     *Option
			inline  = false
			consume int
		)

		if strings.HasPrefix(arg, "--") {
			long := arg[2:]
			if i := strings.IndexByte(long, '='); i >= 0 {
				it.insert(long[i+1:])
				long = long[:i]
				inline = true
				consume = it.Remaining()
			}
			switch long {
			case "help":
				return ErrHelp
			case "log-level":
				s, err := it.NextArg(arg)
				if err != nil {
					return err
				}
				level, err := logging.ParseLevel(s)
				if err != nil {
					return Usagef("%s", err)
				}
				logging.SetLevel(level)
				continue
			}
			if opt = usage.long(long); opt == nil {
				return Usagef("unknown option --%s", long)
			}
		} else {
			rs := []rune(arg[1:])
			if len(rs) != 1 {
				return Usagef("unknown option %s", arg)
			}
			if rs[0] == '?' {
				return ErrHelp
			}
			if opt = usage.short(rs[0]); opt == nil {
				return Usagef("unknown option %s", arg)
			}
		}

		log.Debugf("option %s", optionName(opt.Short, opt.Long))
		if err := u.ParseOption(opt.Short, opt.Long, it); err != nil {
			return err
		}
		if inline && it.Remaining() == consume {
			return Usagef("option --%s doesn't take an argument", opt.Long)
		}
	}

	if required := usage.required(); it.Remaining() < len(required) {
		return Usagef("missing required parameter %s", required[it.Remaining()].Name)
	}

	if err := u.ParsePostOptions(it); err != nil {
		return err
	}
	if s, more := it.Peek(); more {
		return Usagef("unexpected parameter %q", s)
	}

	return u.Run(ctx)
}

// Exit statuses used by Main.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Main runs u with the process's arguments and exits.
//
// Help goes to standard output.  A usage error prints the message and
// the usage to standard error.  Any other error is logged.
func Main(program string, u Utility) {
	os.Exit(Run(context.Background(), program, u, os.Args[1:]))
}

// Run is Main without the os.Exit, which is handy for testing.  It
// returns the exit status.
func Run(ctx context.Context, program string, u Utility, args []string) int {
	err := Execute(ctx, program, u, args)
	var ue *UsageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrHelp):
		formatUsage(os.Stdout, program, u)
		return ExitOK
	case errors.As(err, &ue):
		fmt.Fprintln(os.Stderr, ue.Error())
		formatUsage(os.Stderr, program, u)
		return ExitUsage
	default:
		logging.New(program).Error(err.Error())
		return ExitError
	}
}

func formatUsage(w *os.File, program string, u Utility) {
	usage := u.UsageInfo()
	if usage == nil {
		usage = NewUsageInfo()
	}
	if err := usage.Format(w, program, text.DefaultWrapWidth); err != nil {
		log.Warnf("can't write usage: %s", err)
	}
}
