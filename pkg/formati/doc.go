// Package formati 在格式模板中直接使用点号路径、下标与方法调用。
//
// 模板先经 [github.com/nobane/formati/pkg/rewrite] 改写，提取出的表达式
// 在 [Vars] 中求值后追加到显式位置参数之后，再交给
// [github.com/nobane/formati/pkg/fmtengine] 格式化：
//
//	vars := formati.Vars{"user": u, "coords": []int{3, 4}}
//	formati.Format(vars, "{user.name} at ({coords.0}, {coords.1})")
//	formati.Format(vars, "{user.id:>6} {}", "explicit")
//
// 裸名称（如 "{user}"）直接从 vars 读取；[Named] 参数优先于 vars。
//
// 需要反复使用同一模板时，用 [Formatter.Prepare] 只分析一次，
// 或通过 [WithCache] 共享分析结果。
package formati
