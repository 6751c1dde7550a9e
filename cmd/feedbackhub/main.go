// feedbackhubのエントリポイント。
// フィードバック収集APIのHTTPサーバー、マイグレーション、開発用トークン発行を提供する。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
