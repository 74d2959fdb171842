// Package tracei 用 formati 模板生成 OpenTelemetry span 名称与事件。
//
// 每个提取的表达式以 "formati.expr.<表达式>" 为键附加到 span，
// 原始模板记录在 "formati.template"。
package tracei
