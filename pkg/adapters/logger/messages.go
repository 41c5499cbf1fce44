package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recording (info)
		"Press Ctrl+C to stop recording":         "Ctrl+C で録画を停止します",
		"Recording %s at %.0f fps (session %s)":  "%s を %.0f fps で録画中 (セッション %s)",
		"Interrupted, stopping recording...":     "中断されました。録画を停止しています...",
		"Capture limit reached, recording stopped": "キャプチャ上限に達したため録画を停止しました",
		"Capture limit reached after %d frames":  "%d フレームでキャプチャ上限に達しました",
		"Captured %d frames in %s":               "%[2]s で %[1]d フレームをキャプチャしました",
		"Recording stopped without frames":       "フレームがないまま録画が停止しました",

		// Capture problems
		"Failed to start capture: %s":                             "キャプチャを開始できませんでした: %s",
		"Capture stream did not stop cleanly: %s":                 "キャプチャストリームが正常に停止しませんでした: %s",
		"Cursor tracking unavailable: %s":                         "カーソル追跡を利用できません: %s",
		"Cursor highlighting is only available with --source url": "カーソル強調表示は --source url でのみ利用できます",
		"X11 capture failed: %v":                                  "X11キャプチャに失敗しました: %v",
		"Failed to stop capture pipeline: %v":                     "キャプチャパイプラインを停止できませんでした: %v",
		"Failed to remember region: %v":                           "録画領域を保存できませんでした: %v",

		// Editing
		"Downscaled %d frames to fit the editor memory limit": "エディタのメモリ上限に合わせて %d フレームを縮小しました",
		"Applied %s: %d -> %d frames":                         "%s を適用しました: %d -> %d フレーム",
		"Imported %d frames from %s":                          "%[2]s から %[1]d フレームを読み込みました",

		// Encoding
		"Encoding %d frames as %s":                                "%d フレームを %s としてエンコード中",
		"Failed to encode: %s":                                    "エンコードに失敗しました: %s",
		"%s format not available (%s), falling back to GIF":      "%s 形式は利用できません (%s)。GIFで代替します",
		"%s output is not available, saved as %s":                 "%s 出力は利用できないため %s として保存しました",
		"Enhanced GIF needs ffmpeg, using the built-in encoder":   "高品質GIFにはffmpegが必要なため、内蔵エンコーダーを使用します",
		"ffmpeg at %s may lack libx264":                           "%s のffmpegはlibx264に対応していない可能性があります",
		"Output is %d KB, over the %d KB limit after %d attempts": "出力は %d KB で、%[3]d 回の試行後も上限 %[2]d KB を超えています",

		// Output
		"Saving as %s instead of %s":      "%[2]s の代わりに %[1]s として保存します",
		"Saved %s (%d KB)":                "%s を保存しました (%d KB)",
		"Failed to write output: %s":      "出力の書き込みに失敗しました: %s",
		"Failed to save debug output: %v": "デバッグ出力の保存に失敗しました: %v",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Failed to write summary: %s":     "サマリーの書き込みに失敗しました: %s",
		"Failed to write metrics: %s":     "メトリクスの書き込みに失敗しました: %s",
	})
}
