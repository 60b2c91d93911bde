package cmd

import (
	"flag"

	"github.com/etnz/taxfolio/date"
	"github.com/etnz/taxfolio/tax"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	predictMethods = predict.Set{"fifo", "average"}
	predictPeriods = predict.Set(date.PeriodNames())
)

// flagPredictors overrides the predictor of well known flag names.
func flagPredictors() map[string]complete.Predictor {
	return map[string]complete.Predictor{
		"ledger":      predict.Files("*.jsonl"),
		"history":     predict.Files("*.jsonl"),
		"quotes":      predict.Files("*.json"),
		"config":      predict.Files("*.toml"),
		"o":           predict.Files("*.jsonl"),
		"method":      predictMethods,
		"p":           predictPeriods,
		"j":           predict.Set(tax.Codes()),
		"d":           predict.Set{"today"},
		"quotes-path": predict.Something,
	}
}

// Completion returns the shell completion tree of the application: the
// global flags, and a sub command per command with its own flags.
func Completion(global *flag.FlagSet, commands []subcommands.Command) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command, len(commands)),
		Flags: predictFlags(global),
	}
	for _, c := range commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: predictFlags(f)}
	}
	return root
}

func predictFlags(f *flag.FlagSet) map[string]complete.Predictor {
	known := flagPredictors()
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := known[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}
