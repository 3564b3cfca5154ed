package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hyinit/internal/patch"
	"hyinit/internal/store"
)

var cacheOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the transformed-class cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of cached classes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			n, err := st.Len()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cached class(es)\n", cfg.CacheDB, n)
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cache entries older than --older-than",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			n, err := st.Prune(time.Now().Add(-cacheOlderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entr(ies)\n", n)
			return nil
		})
	},
}

var cacheForgetCmd = &cobra.Command{
	Use:   "forget <class>...",
	Short: "Drop every cache entry of the named classes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			total := 0
			for _, a := range args {
				n, err := st.Forget(patch.InternalName(a))
				if err != nil {
					return err
				}
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d entr(ies)\n", total)
			return nil
		})
	},
}

func init() {
	cachePruneCmd.Flags().DurationVar(&cacheOlderThan, "older-than", 7*24*time.Hour, "age above which entries are dropped")
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheForgetCmd)
	rootCmd.AddCommand(cacheCmd)
}

func withStore(fn func(*store.Store) error) error {
	if cfg.CacheDB == "" {
		return errors.New("no cache configured (set cache_db or HYINIT_CACHE_DB)")
	}
	st, err := store.Open(cfg.CacheDB)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
