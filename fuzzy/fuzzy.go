// Package fuzzy 实现一个小型 Mamdani 模糊推理系统。
//
// 核心思想：用三角隶属函数把输入划分成语言学档位（低/中/高），
// 固定规则集做 min-AND 激活、max 聚合，质心法去模糊得到连续输出。
//
// 并发模型：System 是规则与隶属定义，构建后不可变、跨请求共享；
// 每次 Evaluate 的工作状态（激活度、聚合缓冲）都是调用栈上的局部量，
// 并发评估之间不存在任何共享可变状态。
package fuzzy

import (
	"fmt"

	"github.com/cinekit/cinekit/core"
)

// ErrNoRuleActivation 表示输入落在规则未覆盖的子区间，没有任何规则被激活。
// 这不是致命错误：调用方应将其视为优先级 0。
var ErrNoRuleActivation = core.NewDomainError(core.ModuleFuzzy, core.ErrorCodeInvalidRange,
	"fuzzy: no rule activated for inputs")

// Term 是一个三角隶属函数：在 [A, C] 上非零，峰值位于 B。
// A == B 或 B == C 时退化为半开斜坡（定义域端点档位的常规写法）。
type Term struct {
	Name    string
	A, B, C float64
}

// Membership 计算 x 对该档位的隶属度 [0,1]。
func (t Term) Membership(x float64) float64 {
	switch {
	case x < t.A || x > t.C:
		return 0
	case x == t.B:
		return 1
	case x < t.B:
		if t.B == t.A {
			return 1
		}
		return (x - t.A) / (t.B - t.A)
	default:
		if t.C == t.B {
			return 1
		}
		return (t.C - x) / (t.C - t.B)
	}
}

// Variable 是一个语言学变量：定义域 + 若干档位。
type Variable struct {
	Name   string
	Lo, Hi float64
	terms  map[string]Term
	order  []string
}

func NewVariable(name string, lo, hi float64) *Variable {
	return &Variable{Name: name, Lo: lo, Hi: hi, terms: make(map[string]Term)}
}

// AddTerm 追加一个三角档位 [a, b, c]。
func (v *Variable) AddTerm(name string, a, b, c float64) *Variable {
	v.terms[name] = Term{Name: name, A: a, B: b, C: c}
	v.order = append(v.order, name)
	return v
}

func (v *Variable) term(name string) (Term, bool) {
	t, ok := v.terms[name]
	return t, ok
}

// Condition 是规则前件的一个原子条件：某输入变量命中某档位。
type Condition struct {
	Variable string
	Term     string
}

// Rule 是一条 Mamdani 规则：IF 所有条件（AND = min） THEN 输出档位。
type Rule struct {
	When []Condition
	Then string // 输出变量的档位名
}

// System 是完整的规则与隶属定义。构建完成后不可变。
type System struct {
	inputs map[string]*Variable
	output *Variable
	rules  []Rule

	// step 是输出定义域的采样步长，用于质心法数值积分。
	step float64
}

// NewSystem 创建一个以 output 为后件变量的推理系统。
func NewSystem(output *Variable, inputs ...*Variable) *System {
	s := &System{
		inputs: make(map[string]*Variable, len(inputs)),
		output: output,
		step:   0.5,
	}
	for _, in := range inputs {
		s.inputs[in.Name] = in
	}
	return s
}

// AddRule 追加一条规则；引用不存在的变量或档位时返回错误（构建期暴露配置问题）。
func (s *System) AddRule(then string, when ...Condition) error {
	if _, ok := s.output.term(then); !ok {
		return fmt.Errorf("fuzzy: unknown output term %q", then)
	}
	for _, c := range when {
		in, ok := s.inputs[c.Variable]
		if !ok {
			return fmt.Errorf("fuzzy: unknown input variable %q", c.Variable)
		}
		if _, ok := in.term(c.Term); !ok {
			return fmt.Errorf("fuzzy: unknown term %q of variable %q", c.Term, c.Variable)
		}
	}
	s.rules = append(s.rules, Rule{When: when, Then: then})
	return nil
}

// Evaluate 执行一次完整推理：激活 → 聚合 → 质心去模糊。
// 纯函数：所有中间状态都在本次调用内部，可安全并发调用。
func (s *System) Evaluate(inputs map[string]float64) (float64, error) {
	if s == nil || len(s.rules) == 0 {
		return 0, core.NewDomainError(core.ModuleFuzzy, core.ErrorCodeMissingResource,
			"fuzzy: system has no rules")
	}
	for name := range s.inputs {
		if _, ok := inputs[name]; !ok {
			return 0, fmt.Errorf("fuzzy: missing input %q", name)
		}
	}

	// 1. 规则激活度：前件各条件隶属度取 min
	activations := make([]float64, len(s.rules))
	for i, r := range s.rules {
		act := 1.0
		for _, c := range r.When {
			in := s.inputs[c.Variable]
			t, _ := in.term(c.Term)
			mu := t.Membership(inputs[c.Variable])
			if mu < act {
				act = mu
			}
		}
		activations[i] = act
	}

	// 2. 聚合 + 3. 质心：对输出定义域采样，逐点取 max(min(激活度, 后件隶属度))
	var num, den float64
	for y := s.output.Lo; y <= s.output.Hi+1e-9; y += s.step {
		var mu float64
		for i, r := range s.rules {
			if activations[i] == 0 {
				continue
			}
			t, _ := s.output.term(r.Then)
			m := t.Membership(y)
			if activations[i] < m {
				m = activations[i]
			}
			if m > mu {
				mu = m
			}
		}
		num += y * mu
		den += mu
	}

	if den == 0 {
		return 0, ErrNoRuleActivation
	}
	return num / den, nil
}
