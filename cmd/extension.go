package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

const (
	EnvLedgerFile   = "TAXFOLIO_LEDGER_FILE"
	EnvQuotesFile   = "TAXFOLIO_QUOTES_FILE"
	EnvQuotesPath   = "TAXFOLIO_QUOTES_PATH"
	EnvHistoryFile  = "TAXFOLIO_HISTORY_FILE"
	EnvConfigFile   = "TAXFOLIO_CONFIG_FILE"
	EnvVerbose      = "TAXFOLIO_VERBOSE"
	EnvMethod       = "TAXFOLIO_METHOD"
	EnvJurisdiction = "TAXFOLIO_JURISDICTION"
	EnvBrokers      = "TAXFOLIO_CASH_TRACKING_BROKERS"
	EnvRiskFreeRate = "TAXFOLIO_RISK_FREE_RATE"
)

// ExtensionPrefix prefixes the name of external subcommands found in PATH.
const ExtensionPrefix = "tfolio-"

// RunExtension attempts to find and execute an external tfolio-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand
	log := Logger()

	lp, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Str("extension", name).Err(err).Msg("external command not found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// Global flags are passed down as environment variables.
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

func extensionEnv() []string {
	return []string{
		EnvLedgerFile + "=" + *ledgerFile,
		EnvQuotesFile + "=" + *quotesFile,
		EnvQuotesPath + "=" + *quotesPath,
		EnvHistoryFile + "=" + *historyFile,
		EnvConfigFile + "=" + *configFile,
		EnvVerbose + "=" + strconv.FormatBool(*Verbose),
	}
}
