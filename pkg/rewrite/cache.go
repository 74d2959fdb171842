package rewrite

import "sync"

// Cache 以模板原文为键缓存分析结果，可并发使用。
//
// 模板来自固定的调用点，数量有限，因此不做淘汰。
// 分析失败的模板不会写入缓存。
type Cache struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

// NewCache 创建空缓存。
func NewCache() *Cache {
	return &Cache{plans: make(map[string]*Plan)}
}

// Analyze 返回缓存中的 [Plan]，未命中时调用 [Analyze] 并写入缓存。
// 返回的 Plan 被所有调用方共享，不要修改。
func (c *Cache) Analyze(template string) (*Plan, error) {
	c.mu.RLock()
	plan, ok := c.plans[template]
	c.mu.RUnlock()
	if ok {
		return plan, nil
	}

	plan, err := Analyze(template)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.plans[template]; ok {
		plan = cached
	} else {
		c.plans[template] = plan
	}
	c.mu.Unlock()

	return plan, nil
}

// Len 返回缓存的模板数量。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.plans)
}

// Reset 清空缓存。
func (c *Cache) Reset() {
	c.mu.Lock()
	c.plans = make(map[string]*Plan)
	c.mu.Unlock()
}
