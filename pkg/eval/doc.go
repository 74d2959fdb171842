// Package eval 对占位符中的表达式求值。
//
// 表达式在 [Scope] 中通过反射解析，只支持取值类语法：
//
//	user.name           字段、map 键或无参方法
//	coords.0            切片/数组/字符串下标，结构体第 N 个字段
//	items[i]            下标表达式
//	user.DisplayName()  方法调用，参数按形参类型转换
//	len(items)          内置函数
//	-n  *p  &v  !ok     一元运算
//	"lit" 'lit' `raw`   字面量
//
// 二元运算返回 [ErrUnsupported]。
//
// 字段名依次尝试原名、首字母大写、snake_case 转 CamelCase、json tag，
// 最后做大小写不敏感匹配，因此 "user.id" 可以读取 User.ID。
package eval
