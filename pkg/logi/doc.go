// Package logi 把 formati 模板接入 log/slog。
//
// 级别未启用时不做任何格式化；模板非法时写入一条
// "formati: invalid log template" 的 ERROR 记录，带 template 与 error 属性。
package logi
