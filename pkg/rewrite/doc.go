// Package rewrite 将带有复合表达式的格式模板改写为只含位置下标的模板。
//
// 模板语法与常见的 "{}" 格式化引擎一致，额外允许占位符中出现
// 点号路径、下标与调用表达式：
//
//	"Position: ({coordinates.0}, {coordinates.1})"
//
// 改写结果：
//
//	"Position: ({0}, {1})"   表达式: [coordinates.0 coordinates.1]
//
// # 语义说明
//
//  1. "{{" 与 "}}" 为转义序列，原样保留
//  2. 占位符在第一个顶层 ":" 处拆分为表达式与说明符，说明符原样保留
//  3. 空表达式、十进制数字与单个标识符为简单表达式，不改写
//  4. 其余表达式按文本去重，下标为首次出现顺序
//  5. 存在复合表达式时，隐式的 "{}" 与 ".*" 按消耗顺序改写为显式下标
//  6. 花括号不平衡时返回 [MalformedTemplateError]，不产生部分结果
//
// # 两阶段使用
//
// [Analyze] 是纯函数，可在启动阶段执行一次；[Plan.Rewrite] 按显式参数个数
// 平移下标，使提取的表达式追加在显式参数之后：
//
//	plan, err := rewrite.Analyze("{a.b}, {}, {a.b}")
//	plan.Rewrite(1) // "{1}, {0}, {1}"
//
// 包内没有全局状态。需要复用分析结果时显式创建 [Cache]。
package rewrite
