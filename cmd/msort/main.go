package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	// errUsage is returned after help has been printed
	errUsage = errors.New("usage")

	rootCmd = &cobra.Command{
		Use:   "msort",
		Short: "Sort music files into Artist/Album/Track Song.ext",
		Long: `msort moves or copies audio files into an Artist/Album/"Track Song.ext" tree.

Fields come from the filename, which must look like
"Artist-Album-NN Song Title.mp3" (or .flac), or from the embedded tags
with --metadata. Files that do not qualify are reported and left alone.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSort,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./msort.yaml)")
	rootCmd.PersistentFlags().String("journal", "", "SQLite journal of runs and placements")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Sorting flags
	flags := rootCmd.Flags()
	flags.StringP("dir", "d", "", "input directory (default is the working directory)")
	flags.StringP("out", "o", "", "output directory (default is the working directory)")
	flags.BoolP("copy", "c", false, "copy files instead of moving them")
	flags.BoolP("metadata", "m", false, "use embedded tags instead of the filename pattern")
	flags.BoolP("recursive", "r", false, "process subdirectories")
	flags.String("tag-backend", "native", "tag reader: native (id3v2/vorbis) or generic")
	flags.Bool("skip-unreadable", false, "skip files whose tags cannot be read instead of stopping")
	flags.Bool("sanitize", false, "make artist, album and song safe as path segments")
	flags.Bool("ascii", false, "transliterate artist, album and song to ASCII")
	flags.Int("retries", 0, "attempts for transient filesystem errors (0 = auto)")
	flags.Bool("nas-mode", false, "force NAS retry tuning on or off (auto-detected when unset)")
	flags.String("events", "", "directory for JSONL event logs")
	flags.String("report", "", "write a Markdown run report to this path")

	// Bind flags to viper
	for _, name := range []string{"journal", "verbose", "quiet"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	for _, name := range []string{
		"dir", "out", "copy", "metadata", "recursive", "tag-backend", "skip-unreadable",
		"sanitize", "ascii", "retries", "nas-mode", "events", "report",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("msort")
		viper.SetConfigType("yaml")
	}

	// MSORT_TAG_BACKEND, MSORT_OUT, ...
	viper.SetEnvPrefix("MSORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
