// Package fmtengine 实现 "{}" 风格的格式化引擎。
//
// 引擎只接受位置下标、裸名称与说明符，复合表达式需先经
// [github.com/nobane/formati/pkg/rewrite] 改写为下标。
//
// # 占位符
//
//	{}        下一个隐式位置参数
//	{2}       第 2 个位置参数
//	{name}    命名参数（[Named]），其次 [Engine.Lookup]
//	{{ / }}   字面量 "{" / "}"
//
// # 说明符
//
//	[[fill]align][sign]['#']['0'][width]['.' precision][type]
//
//   - align: "<" 左对齐, "^" 居中, ">" 右对齐；数值默认右对齐
//   - width / precision: 整数，或 "N$" / "name$" 引用参数
//   - ".*": 先取一个隐式参数作为精度，再取值
//   - type: 空（Display）, "?"（Debug）, "x" "X" "o" "b" "e" "E"
//   - 说明符中可嵌套占位符: "{value:>{width}}"
//
// 宽度按终端显示单元计算，宽字符占两格。
//
// # 示例
//
//	fmtengine.Format("{:>8.2}|{name:^7}|", 3.14159, fmtengine.Named("name", "ann"))
//	// "    3.14|  ann  |"
package fmtengine
