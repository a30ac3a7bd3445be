package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":                                  "パイプラインを開始します",
		"Pipeline completed successfully":                    "パイプラインが正常に完了しました",
		"Encoder: %s (%s backend)":                           "エンコーダ: %s (%s バックエンド)",
		"Encoding %d frames at %.2f fps":                     "%d フレームを %.2f fps でエンコード中",
		"Video encoded: %d packets, %d bytes":                "エンコード完了: %d パケット, %d バイト",
		"MP4 output requires H.264, writing a raw %s stream": "MP4出力にはH.264が必要です。%s の生ストリームを書き出します",

		// Orchestration level messages (errors)
		"Failed to select encoder: %s": "エンコーダの選択に失敗しました: %s",
		"Failed to open encoder: %s":   "エンコーダのオープンに失敗しました: %s",
		"Failed to close encoder: %s":  "エンコーダのクローズに失敗しました: %s",
		"Failed to write output: %s":   "出力の書き出しに失敗しました: %s",
		"Failed to encode video: %s":   "動画のエンコードに失敗しました: %s",
		"Failed to write metrics: %s":  "メトリクスの書き出しに失敗しました: %s",

		// Encoder selection
		"H.264 encoder not available, falling back to the reference codec": "H.264エンコーダが利用できないため、参照コーデックにフォールバックします",

		// Pipeline driver
		"Encoding %d frames, frame duration %d in %s": "%d フレームをエンコード中 (フレーム長 %d, タイムベース %s)",
		"Allocated %dx%d %s buffer, strides %v":       "%dx%d %s バッファを確保しました (ストライド %v)",
		"Failed to save debug frame %d: %s":           "デバッグフレーム %d の保存に失敗しました: %s",
		"Failed to save packet log: %s":               "パケットログの保存に失敗しました: %s",

		// Session
		"Started %s %v":                                         "%s を開始しました %v",
		"Submitted frame pts %d":                                "フレームを投入しました pts %d",
		"Discarded packet pts %d size %d":                       "パケットを破棄しました pts %d サイズ %d",
		"End of input after %d frames":                          "%d フレームで入力終了",
		"End of stream: %d forwarded, %d discarded":             "ストリーム終了: 転送 %d, 破棄 %d",
		"First packet is not a keyframe (pts %d, %d bytes): %s": "最初のパケットがキーフレームではありません (pts %d, %d バイト): %s",

		// Flush
		"Flush forwarded %d packets": "フラッシュで %d パケットを転送しました",
		"Flushed %d packets in %s":   "%d パケットを %s でフラッシュしました",

		// Encoders
		"Opened %dx%d %s, gop %d, max B-frames %d": "%dx%d %s をオープンしました (GOP %d, 最大Bフレーム %d)",
		"Ignoring encoder option %s=%s":            "エンコーダオプション %s=%s を無視します",
		"Coded %c picture %d: %d -> %d bytes":      "%c ピクチャ %d を符号化: %d -> %d バイト",

		// Sinks
		"MP4 written: %s (%d samples, %d bytes)":    "MP4を書き出しました: %s (%d サンプル, %d バイト)",
		"Stream written: %s (%d packets, %d bytes)": "ストリームを書き出しました: %s (%d パケット, %d バイト)",

		// CLI messages
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
	})
}
