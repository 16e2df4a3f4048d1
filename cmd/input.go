package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errNoInput は入力ファイルも標準入力も与えられなかったことを示すのだ。
var errNoInput = errors.New("入力（-f/--file または標準入力）を指定してほしいのだ")

// readInput は -f で指定されたファイルを読むのだ。"-" か、未指定でパイプされている場合は標準入力を読むのだ。
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	switch {
	case path == "-":
		return io.ReadAll(cmd.InOrStdin())
	case path == "":
		if !isStdin() {
			return nil, errNoInput
		}
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("入力ファイルの読み込みに失敗したのだ (%s): %w", path, err)
	}
	return data, nil
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
