// Package main provides localization for the planarenc CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":       "出力先",
		"Encoder":      "エンコーダ",
		"Picture":      "画像",
		"Timing":       "タイミング",
		"Rate Control": "レート制御",
		"Debug":        "デバッグ",
		"Logging":      "ログ",
		"Reports":      "レポート",

		// Root command
		"Encode synthesized planar video frames and write the packet stream": "合成したプレーナー映像フレームをエンコードしパケットストリームを書き出す",

		// Encode command
		"Encode generated frames to a file":                                                          "生成したフレームをファイルにエンコード",
		"Generate frames, encode them with the named codec and write the stream to the output file.": "フレームを生成し、指定したコーデックでエンコードして出力ファイルに書き出します。",
		"Output file argument is required":                                                           "出力ファイルの指定が必要です",

		// Output flags
		"YAML configuration file":           "YAML設定ファイル",
		"Output container (auto, mp4, raw)": "出力コンテナ（auto, mp4, raw）",

		// Encoder flags
		"Path to ffmpeg executable":                           "ffmpeg実行ファイルのパス",
		"Fail instead of falling back to the reference codec": "参照コーデックへフォールバックせずに失敗する",
		"Codec option as key=value (repeatable)":              "コーデックオプション key=value（複数指定可）",

		// Picture flags
		"Frame width (default: 640)":            "フレーム幅（デフォルト: 640）",
		"Frame height (default: 320)":           "フレーム高さ（デフォルト: 320）",
		"Pixel format (default: nv21)":          "ピクセルフォーマット（デフォルト: nv21）",
		"Row alignment in bytes (default: 32)":  "行アライメント（バイト、デフォルト: 32）",
		"Frame content (gradient, card, solid)": "フレーム内容（gradient, card, solid）",
		"Label drawn on the test card":          "テストカードに描くラベル",

		// Timing flags
		"Number of frames (default: 20)":             "フレーム数（デフォルト: 20）",
		"Frame rate as num/den (default: 2/1)":       "フレームレート num/den（デフォルト: 2/1）",
		"Stream time base as num/den (default: 1/2)": "ストリームのタイムベース num/den（デフォルト: 1/2）",

		// Rate control flags
		"Target bitrate in bits/sec (default: 400000)":             "目標ビットレート bps（デフォルト: 400000）",
		"GOP size (default: 3)":                                    "GOPサイズ（デフォルト: 3）",
		"Maximum consecutive B-frames (default: 0)":                "連続Bフレームの最大数（デフォルト: 0）",
		"Force a keyframe every n frames (0 = encoder decides)":    "nフレームごとにキーフレームを強制（0 = エンコーダに任せる）",
		"Repeat parameter sets in-band instead of a global header": "グローバルヘッダではなくパラメータセットをストリーム内に繰り返す",

		// Report flags
		"Write Prometheus metrics to a textfile":                         "Prometheusメトリクスをテキストファイルに書き出す",
		"Output execution summary to file (Markdown, or JSON for .json)": "実行サマリーをファイルに出力（Markdown形式、.jsonならJSON形式）",

		// Debug flags
		"Enable debug output":                       "デバッグ出力を有効化",
		"Directory for debug output":                "デバッグ出力先ディレクトリ",
		"Number of raw frames to save (default: 5)": "保存する生フレーム数（デフォルト: 5）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "すべてのログ出力を抑制",

		// Encode messages
		"Encoding %s with %s...":      "%s を %s でエンコード中...",
		"Failed to write summary: %s": "サマリーの書き出しに失敗しました: %s",
		"Summary saved to %s":         "サマリーを %s に保存しました",

		// Probe command
		"Inspect the video track of an MP4 file": "MP4ファイルの映像トラックを調べる",
		"Print the report as JSON":               "レポートをJSONで出力",
		"MP4 file argument is required":          "MP4ファイルの指定が必要です",
		"Frame Size":                             "フレームサイズ",
		"Timescale":                              "タイムスケール",
		"Fragmented":                             "フラグメント化",
		"Samples":                                "サンプル数",

		// Formats command
		"List supported pixel formats and codecs": "対応ピクセルフォーマットとコーデックを一覧表示",
		"Pixel formats:":                          "ピクセルフォーマット:",
		"Codecs:":                                 "コーデック:",
		"planes":                                  "プレーン",
		"available":                               "利用可能",
		"unavailable":                             "利用不可",

		// Summary labels
		"Encoding Summary":  "エンコードサマリー",
		"Session":           "セッション",
		"Codec":             "コーデック",
		"Backend":           "バックエンド",
		"Fallback":          "フォールバック",
		"Settings":          "設定",
		"Pixel Format":      "ピクセルフォーマット",
		"Frame Rate":        "フレームレート",
		"Time Base":         "タイムベース",
		"Bitrate":           "ビットレート",
		"GOP Size":          "GOPサイズ",
		"Max B-Frames":      "最大Bフレーム数",
		"Global Header":     "グローバルヘッダ",
		"Stream":            "ストリーム",
		"Frames Submitted":  "投入フレーム数",
		"Packets Written":   "書き出しパケット数",
		"Keyframes":         "キーフレーム数",
		"Packets Discarded": "破棄パケット数",
		"Payload":           "ペイロード",
		"Strides":           "ストライド",
		"Frame Duration":    "フレーム長",
		"Duration":          "長さ",
		"File":              "ファイル",
		"Container":         "コンテナ",
		"File Size":         "ファイルサイズ",
		"Total":             "合計",
		"Flush":             "フラッシュ",
		"Generated at":      "生成日時",
		"Item":              "項目",
		"Value":             "値",

		// Version command
		"Show version information": "バージョン情報を表示",
		"planarenc version %s":     "planarenc バージョン %s",
	})
}
