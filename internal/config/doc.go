// Package config は環境変数からアプリケーション設定を読み込む。
//
// カレントディレクトリに .env があれば環境変数として読み込む。
// 既に設定済みの環境変数は上書きしない。
package config
