package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级（与传播策略对应）：
//   - MISSING_RESOURCE：目录/模型未加载，整个请求返回空结果 + 原因，不崩溃
//   - UNKNOWN_ENTITY：用户无评分、电影不在目录/相似索引中，跳过该实体即可
//   - INVALID_RANGE：预测评分或可用时长落在模糊引擎定义域之外，静默排除候选
//   - PREDICTION_FAILED：单条预测/相似度计算失败，逐项捕获，绝不中断批次
type DomainError struct {
	Code    string // 错误代码（如 "MISSING_RESOURCE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeMissingResource  = "MISSING_RESOURCE"  // 目录或模型未加载
	ErrorCodeUnknownEntity    = "UNKNOWN_ENTITY"    // 用户/电影不存在
	ErrorCodeInvalidRange     = "INVALID_RANGE"     // 输入落在定义域外
	ErrorCodePredictionFailed = "PREDICTION_FAILED" // 单项预测失败
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 输入无效
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
)

// 模块名称常量
const (
	ModuleCatalog    = "catalog"
	ModuleRatings    = "ratings"
	ModuleModel      = "model"
	ModuleSimilarity = "similarity"
	ModuleFuzzy      = "fuzzy"
	ModuleEngine     = "engine"
	ModuleFeature    = "feature"
	ModuleStore      = "store"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsMissingResource 检查错误是否为资源未加载
func IsMissingResource(err error) bool { return hasCode(err, ErrorCodeMissingResource) }

// IsUnknownEntity 检查错误是否为实体不存在
func IsUnknownEntity(err error) bool { return hasCode(err, ErrorCodeUnknownEntity) }

// IsInvalidRange 检查错误是否为定义域外输入
func IsInvalidRange(err error) bool { return hasCode(err, ErrorCodeInvalidRange) }

// IsPredictionFailed 检查错误是否为单项预测失败
func IsPredictionFailed(err error) bool { return hasCode(err, ErrorCodePredictionFailed) }

// 存储层通用错误
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeUnknownEntity, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)
