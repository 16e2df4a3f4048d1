package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultPromptFileName は合成したプロンプトを書き出す共通のベースファイル名です。
	DefaultPromptFileName = "prompt.txt"
	// DefaultNegativeFileName はネガティブ項目を書き出す共通のベースファイル名です。
	DefaultNegativeFileName = "negative.txt"

	filePerm = 0o644
	dirPerm  = 0o755
)

var (
	// PromptFileRegex はプロンプトファイル (prompt_1.txt 等) に一致します
	PromptFileRegex = createIndexedRegex(DefaultPromptFileName)
	// NegativeFileRegex はネガティブ項目ファイル (negative_1.txt 等) に一致します
	NegativeFileRegex = createIndexedRegex(DefaultNegativeFileName)
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入します。
// 例: "out/prompt.txt", 1 -> "out/prompt_1.txt"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// PromptPaths は index 番目（1始まり）のジョブのプロンプトとネガティブ項目の出力パスを返します。
func PromptPaths(baseDir string, index int) (prompt, negative string, err error) {
	if index < 1 {
		return "", "", fmt.Errorf("インデックスは1以上である必要があります: %d", index)
	}
	promptBase, err := ResolveOutputPath(baseDir, DefaultPromptFileName)
	if err != nil {
		return "", "", err
	}
	negativeBase, err := ResolveOutputPath(baseDir, DefaultNegativeFileName)
	if err != nil {
		return "", "", err
	}
	if prompt, err = GenerateIndexedPath(promptBase, index); err != nil {
		return "", "", err
	}
	if negative, err = GenerateIndexedPath(negativeBase, index); err != nil {
		return "", "", err
	}
	return prompt, negative, nil
}

// WritePrompt は index 番目のジョブの合成結果をローカルのディレクトリに書き出します。
// negative が空の場合、ネガティブ項目のファイルは作成しません。
func WritePrompt(baseDir string, index int, prompt, negative string) ([]string, error) {
	if strings.Contains(baseDir, "://") {
		return nil, fmt.Errorf("リモートの出力先には対応していません: %s", baseDir)
	}
	promptPath, negativePath, err := PromptPaths(baseDir, index)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(promptPath), dirPerm); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	written := []string{promptPath}
	if err := os.WriteFile(promptPath, []byte(prompt), filePerm); err != nil {
		return nil, fmt.Errorf("プロンプトの書き出しに失敗しました (%s): %w", promptPath, err)
	}
	if negative != "" {
		if err := os.WriteFile(negativePath, []byte(negative), filePerm); err != nil {
			return written, fmt.Errorf("ネガティブ項目の書き出しに失敗しました (%s): %w", negativePath, err)
		}
		written = append(written, negativePath)
	}
	return written, nil
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "prompt.txt" -> ^prompt_\d+\.txt$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
