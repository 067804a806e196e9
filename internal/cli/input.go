package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	urlFlags []string
	urlsFile string
)

func addURLFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&urlFlags, "url", nil, "URL to test (can be repeated)")
	cmd.Flags().StringVar(&urlsFile, "urls-file", "", "file with one URL per line; # starts a comment")
}

// collectURLs merges positional arguments, --url flags, --urls-file and the
// config's urls, in that order. Duplicates are removed later by the session.
func collectURLs(args []string, configured []string) ([]string, error) {
	urls := append([]string{}, args...)
	urls = append(urls, urlFlags...)
	if urlsFile != "" {
		fromFile, err := readURLsFile(urlsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	return append(urls, configured...), nil
}

func readURLsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading urls file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading urls file: %w", err)
	}
	return urls, nil
}
