// Package errori 用 formati 模板构造错误消息。
package errori
