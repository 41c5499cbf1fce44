package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":   "出力",
		"Capture":  "キャプチャ",
		"Encoding": "エンコード",
		"Browser":  "ブラウザ設定",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Root command
		"Record the screen as an animated GIF, WebP, APNG or MP4": "画面をアニメーションGIF、WebP、APNG、MP4として録画",
		"gifcap records a screen region or a web page, lets you edit the frames with a script and encodes them under an optional size budget.": "gifcapは画面の領域またはWebページを録画し、スクリプトでフレームを編集して、必要に応じてサイズ上限内でエンコードします。",

		// Commands
		"Record a screen region or a web page": "画面の領域またはWebページを録画",
		"Record until Ctrl+C, --duration or a capture limit, then edit and encode the frames.": "Ctrl+C、--duration、またはキャプチャ上限まで録画し、フレームを編集してエンコードします。",
		"Re-encode an existing GIF, PNG, JPEG or WebP file":                                   "既存のGIF、PNG、JPEG、WebPファイルを再エンコード",
		"Import the frames of a file, apply --edit and encode them again.":                     "ファイルのフレームを読み込み、--editを適用して再エンコードします。",
		"Show version information": "バージョン情報を表示",
		"gifcap version %s":        "gifcap バージョン %s",

		// Common flags
		"YAML configuration file": "YAML設定ファイル",
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Write metrics in Prometheus text format to file":    "メトリクスをPrometheusテキスト形式でファイルに出力",
		"Enable debug output":                                "デバッグ出力を有効化",
		"Directory for debug output":                         "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)":               "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                            "全てのログ出力を抑制",

		// Encode flags
		"Output file path (required)": "出力ファイルパス（必須）",
		"Edit script applied before encoding, e.g. trim:0:40,speed:1.5,yoyo": "エンコード前に適用する編集スクリプト（例: trim:0:40,speed:1.5,yoyo）",
		"Output format (gif, webp, apng, mp4)":                               "出力形式（gif, webp, apng, mp4）",
		"Quality preset (low, medium, high)":                                 "品質プリセット（low, medium, high）",
		"Palette size (2-256)":                                               "パレットの色数（2-256）",
		"Quantizer (adaptive, learned-palette, octree)":                      "減色方式（adaptive, learned-palette, octree）",
		"Enable error diffusion dithering":                                   "誤差拡散ディザリングを有効化",
		"Dithering strength (0-1)":                                           "ディザリングの強さ（0-1）",
		"Concentrate dithering toward the frame center":                      "ディザリングをフレーム中央に集中",
		"Quantizer speed (1-10, higher is faster)":                           "減色の速度（1-10、大きいほど高速）",
		"GIF quality (0-100)":                                                "GIF品質（0-100）",
		"Keep exact colors when the frames fit in 256 colors":                "256色に収まる場合は元の色を維持",
		"Use the ffmpeg palette encoder for GIF when available":              "利用可能ならGIFにffmpegのパレットエンコーダーを使用",
		"Maximum output width in pixels (0 = original)":                      "出力の最大幅（ピクセル、0 = 元のサイズ）",
		"Target maximum file size in KB (0 = unlimited)":                     "目標最大ファイルサイズ（KB、0 = 無制限）",
		"Play count (0 = forever)":                                           "再生回数（0 = 無限ループ）",
		"WebP quality (0-100)":                                               "WebP品質（0-100）",
		"Encode WebP losslessly":                                             "WebPをロスレスでエンコード",
		"MP4 quality (0-100)":                                                "MP4品質（0-100）",
		"Path to ffmpeg executable":                                          "ffmpeg実行ファイルのパス",

		// Capture flags
		"Capture source (x11, url)":                               "キャプチャ元（x11, url）",
		"Capture region as x,y,width,height":                      "キャプチャ領域（x,y,幅,高さ）",
		"Reuse the region of the previous recording":              "前回の録画領域を再利用",
		"Capture rate in frames per second":                       "キャプチャのフレームレート（fps）",
		"Stop recording after this long (0 = until Ctrl+C)":       "指定時間後に録画を停止（0 = Ctrl+Cまで）",
		"Stop automatically after this many frames":               "指定フレーム数で自動停止",
		"Stop automatically after this many seconds of animation": "アニメーションが指定秒数に達したら自動停止",
		"Keep consecutive identical frames":                       "連続する同一フレームを残す",
		"Highlight the cursor and clicks":                         "カーソルとクリックを強調表示",
		"Save without opening the editor":                         "エディタを開かずに保存",
		"X11 display name (default: $DISPLAY)":                    "X11ディスプレイ名（デフォルト: $DISPLAY）",
		"Page to record with --source url":                        "--source url で録画するページ",
		"Path to Chrome executable":                               "Chrome実行ファイルのパス",
		"Run browser in non-headless mode":                        "ブラウザを非ヘッドレスモードで実行",

		// Errors and prompts
		"--url is required with --source url":  "--source url には --url が必要です",
		"input file argument is required":      "入力ファイル引数が必要です",
		"no previous region recorded":          "前回の録画領域がありません",
		"Capture region (x,y,width,height): ": "キャプチャ領域 (x,y,幅,高さ): ",
	})
}
