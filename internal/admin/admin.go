// Package admin implements the stdin admin console (C9): the
// h/?, c, lc, lm, k, b, u, lb, d verb set ported from
// original_source/InternetGamesServer/Command.cpp, built as a
// cobra.Command tree the way Seednode-partybox/main.go builds its CLI,
// with Execute() invoked once per line read from stdin instead of
// os.Args.
package admin

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/udisondev/boardlink/internal/config"
	"github.com/udisondev/boardlink/internal/lobby"
)

// ConnInfo is one row of the "lc" listing.
type ConnInfo struct {
	IP              string
	Port            int
	ConnectedSince  time.Time
	Kind            string
	State           string
	MatchGUID       string
}

// ConnRegistry is the subset of internal/listener's live-connection table
// the console needs.
type ConnRegistry interface {
	List() []ConnInfo
	KickIP(ip string) (count int, err error)
	KickIPPort(ip string, port int) (count int, err error)
}

// ConfigStore is the subset of internal/config.Config the console needs.
type ConfigStore interface {
	GetValue(key string) (string, error)
	SetValue(key, value string) error
	IsBanned(ip string) bool
	Ban(ip string) error
	Unban(ip string) error
	BannedIPList() []string
}

// MatchRegistry is the subset of internal/lobby.Manager the console needs.
type MatchRegistry interface {
	ListMatches() []lobby.MatchInfo
	DestroyMatchByIndex(index int64) error
}

// Console wires the three registries into a cobra.Command tree and drives
// it from an input stream (normally os.Stdin).
type Console struct {
	conns   ConnRegistry
	cfg     ConfigStore
	matches MatchRegistry
	out     io.Writer
}

// New builds a Console. out receives every command's printed output
// (normally os.Stdout).
func New(conns ConnRegistry, cfg ConfigStore, matches MatchRegistry, out io.Writer) *Console {
	return &Console{conns: conns, cfg: cfg, matches: matches, out: out}
}

func (c *Console) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:     "h",
		Aliases: []string{"?"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.out, "List of commands:")
			fmt.Fprintln(c.out, "  - 'c {key} {value [optional]}': Prints or configures the option with the specified key. For a list of valid options, type 'c'.")
			fmt.Fprintln(c.out, "  - 'lc': Lists all connected client sockets.")
			fmt.Fprintln(c.out, "  - 'lm': Lists all active matches.")
			fmt.Fprintln(c.out, "  - 'k {ip}:{port [optional]}': Kicks connected client sockets from the provided IP/port.")
			fmt.Fprintln(c.out, "  - 'b {ip}': Bans client sockets from the provided IP.")
			fmt.Fprintln(c.out, "  - 'u {ip}': Removes an IP from the ban list.")
			fmt.Fprintln(c.out, "  - 'lb': Lists all banned IPs.")
			fmt.Fprintln(c.out, "  - 'd {index}': Destroys (disbands) the match with the specified index.")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "c",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(c.out, "List of options:")
				for _, k := range config.OptionKeys() {
					fmt.Fprintf(c.out, "  - %q: %s\n", k[0], k[1])
				}
				return nil
			}
			key := args[0]
			if len(args) == 1 {
				val, err := c.cfg.GetValue(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "%q\n", val)
				return nil
			}
			return c.cfg.SetValue(key, args[1])
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "lc",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.out)
			fmt.Fprintf(c.out, "%-23s%-21s%-31s%-27s%s\n", "IP", "Connected since", "Type", "State", "Match Joined (GUID)")
			fmt.Fprintln(c.out, strings.Repeat("-", 140))
			for _, info := range c.conns.List() {
				match := info.MatchGUID
				if match == "" {
					match = "No"
				}
				fmt.Fprintf(c.out, "%-21s  %s  %-29s  %-25s  %s\n",
					fmt.Sprintf("%s:%d", info.IP, info.Port),
					info.ConnectedSince.Format("02/01/2006 15:04:05"),
					info.Kind, info.State, match)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "lm",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, mi := range c.matches.ListMatches() {
				fmt.Fprintf(c.out, "[%d] %s %s/%s/%s seats=%d phase=%s\n",
					mi.Index, mi.GUID, mi.Era, mi.Game, mi.Skill, mi.SeatCount, mi.Phase)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "k",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(c.out, "No client address provided!")
				return nil
			}
			ip, portStr, hasPort := strings.Cut(args[0], ":")
			if hasPort {
				port, err := strconv.Atoi(portStr)
				if err != nil {
					return fmt.Errorf("invalid port number: %w", err)
				}
				n, err := c.conns.KickIPPort(ip, port)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Disconnected %d socket(s)!\n", n)
				return nil
			}
			n, err := c.conns.KickIP(ip)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Disconnected %d socket(s)!\n", n)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "b",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(c.out, "No client IP provided!")
				return nil
			}
			ip, _, _ := strings.Cut(args[0], ":")
			if n, err := c.conns.KickIP(ip); err == nil {
				fmt.Fprintf(c.out, "Disconnected %d socket(s)!\n", n)
			}
			alreadyBanned := c.cfg.IsBanned(ip)
			if err := c.cfg.Ban(ip); err != nil {
				return err
			}
			if alreadyBanned {
				fmt.Fprintf(c.out, "IP %s is already in ban list.\n", ip)
			} else {
				fmt.Fprintf(c.out, "Added IP %s to ban list!\n", ip)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "u",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(c.out, "No client IP provided!")
				return nil
			}
			ip, _, _ := strings.Cut(args[0], ":")
			wasBanned := c.cfg.IsBanned(ip)
			if err := c.cfg.Unban(ip); err != nil {
				return err
			}
			if wasBanned {
				fmt.Fprintf(c.out, "Removed IP %s from ban list!\n", ip)
			} else {
				fmt.Fprintf(c.out, "IP %s is not in ban list.\n", ip)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "lb",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ip := range c.cfg.BannedIPList() {
				fmt.Fprintln(c.out, ip)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use: "d",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(c.out, "No match ID provided!")
				return nil
			}
			index, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || index == 0 {
				fmt.Fprintln(c.out, "No match ID provided!")
				return nil
			}
			if err := c.matches.DestroyMatchByIndex(index); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Destroyed match %d!\n", index)
			return nil
		},
	})

	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	return root
}

// Run reads one command per line from in until EOF or ctx-independent
// io.EOF, dispatching each through the cobra tree.
func (c *Console) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		root := c.newRootCmd()
		root.SetArgs(strings.Fields(line))
		if err := root.Execute(); err != nil {
			fmt.Fprintln(c.out, "Error:", err)
		}
	}
	return scanner.Err()
}
