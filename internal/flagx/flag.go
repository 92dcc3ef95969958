// Package flagx lets several configuration layers share os.Args without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

type boolFlag interface {
	IsBoolFlag() bool
}

// Filter returns the subset of args that fs defines, in their original
// order. Both "-name" and "--name" spellings are accepted, as the flag
// package does. A value-taking flag consumes the next token unless that
// token starts with "-"; boolean flags never consume one. Everything after
// a bare "--" is dropped.
func Filter(args []string, fs *flag.FlagSet) []string {
	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name, hasValue := splitFlag(arg)
		if name == "" {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		kept = append(kept, arg)
		if hasValue || isBool(f) {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}

	return kept
}

// splitFlag returns the flag name in arg and whether arg carries an inline
// "=value". name is "" for tokens that are not flags.
func splitFlag(arg string) (name string, hasValue bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name = strings.TrimPrefix(arg[1:], "-")
	if name == "" || name[0] == '-' {
		return "", false
	}
	if k, _, ok := strings.Cut(name, "="); ok {
		return k, true
	}
	return name, false
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(boolFlag)
	return ok && b.IsBoolFlag()
}

// ParseKnown defines nothing itself: it parses the flags fs knows from
// os.Args and ignores the rest.
func ParseKnown(fs *flag.FlagSet) error {
	return fs.Parse(Filter(os.Args[1:], fs))
}

// PathFlag reads a path given by its long or short name from os.Args. The
// last occurrence wins; "" when absent.
func PathFlag(long, short, usage string) string {
	var path string

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&path, long, "", usage)
	fs.StringVar(&path, short, "", usage+" (short)")
	_ = ParseKnown(fs)

	return path
}

// JsonConfigFlags returns the JSON config path from -c / -config.
func JsonConfigFlags() string {
	return PathFlag("config", "c", "Path to config file")
}

// EnvFileFlags returns the dotenv file path from -env / -E.
func EnvFileFlags() string {
	return PathFlag("env", "E", "Path to .env file")
}
