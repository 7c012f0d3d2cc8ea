package model

// Link is a hyperlink found on the page with its classification relative to
// the page's origin.
type Link struct {
	Text       string `json:"text"`
	Href       string `json:"href"`
	IsExternal bool   `json:"isExternal"`
}

// Image describes an <img> element.
type Image struct {
	Alt    string `json:"alt"`
	Src    string `json:"src"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// FormField describes one input, select, textarea, or button inside a form.
type FormField struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	Value       string `json:"value"`
}

// Form describes a <form> element and its fields.
type Form struct {
	Action     string      `json:"action"`
	Method     string      `json:"method"`
	ID         string      `json:"id"`
	ClassName  string      `json:"className"`
	Enctype    string      `json:"enctype"`
	Fields     []FormField `json:"fields"`
	FieldCount int         `json:"fieldCount"`
}

// Script describes an external or inline <script> element. Src is set for
// external scripts; Content carries the first 500 characters of inline ones.
type Script struct {
	Type    string `json:"type"`
	Src     string `json:"src,omitempty"`
	Async   bool   `json:"async,omitempty"`
	Defer   bool   `json:"defer,omitempty"`
	Content string `json:"content,omitempty"`
	Length  int    `json:"length,omitempty"`
}

// Stylesheet describes an external or inline stylesheet.
type Stylesheet struct {
	Type    string `json:"type"`
	Href    string `json:"href,omitempty"`
	Media   string `json:"media,omitempty"`
	Content string `json:"content,omitempty"`
	Length  int    `json:"length,omitempty"`
}

// Iframe describes an <iframe> element.
type Iframe struct {
	Src     string `json:"src"`
	Width   string `json:"width"`
	Height  string `json:"height"`
	Sandbox string `json:"sandbox"`
	Loading string `json:"loading"`
}

// InputField describes an <input> element, collected page-wide for the
// security assessment.
type InputField struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	ID           string `json:"id"`
	Autocomplete string `json:"autocomplete"`
	Pattern      string `json:"pattern"`
	MaxLength    int    `json:"maxLength"`
}

// Button describes a button or submit element.
type Button struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	ID        string `json:"id"`
	ClassName string `json:"className"`
}

// Viewport records the rendered viewport dimensions.
type Viewport struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// Cookie is one browser cookie present after the page rendered.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// NetworkEvent is one captured request/response pair, in encounter order.
type NetworkEvent struct {
	Name            string            `json:"name"`
	InitiatorType   string            `json:"initiatorType"`
	StartTimeMs     float64           `json:"startTimeMs"`
	DurationMs      float64           `json:"durationMs"`
	TransferSize    int64             `json:"transferSize,omitempty"`
	Method          string            `json:"method"`
	Status          int               `json:"status"`
	StatusText      string            `json:"statusText,omitempty"`
	MimeType        string            `json:"mimeType"`
	RequestHeaders  map[string]string `json:"requestHeaders,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	HasPostData     bool              `json:"hasPostData,omitempty"`
	Cached          bool              `json:"cached"`
	ServiceWorker   bool              `json:"serviceWorker"`
	RemoteAddress   string            `json:"remoteAddress,omitempty"`
	Protocol        string            `json:"protocol,omitempty"`
}

// ConsoleEvent is one captured console message, uncaught exception, failed
// request, or dismissed dialog, in encounter order.
type ConsoleEvent struct {
	Level      string   `json:"level"`
	Message    string   `json:"message"`
	Args       []string `json:"args,omitempty"`
	Location   string   `json:"location,omitempty"`
	StackTrace string   `json:"stackTrace,omitempty"`
}

// PerformanceSample is the navigation-timing breakdown collected from the
// browser's Performance API after the page settled.
type PerformanceSample struct {
	DOMContentLoadedMs   float64 `json:"domContentLoaded"`
	LoadCompleteMs       float64 `json:"loadComplete"`
	DOMInteractiveMs     float64 `json:"domInteractive"`
	DOMCompleteMs        float64 `json:"domComplete"`
	DNSLookupMs          float64 `json:"dnsLookup"`
	TCPConnectionMs      float64 `json:"tcpConnection"`
	TLSNegotiationMs     float64 `json:"tlsNegotiation"`
	RequestTimeMs        float64 `json:"requestTime"`
	ResponseTimeMs       float64 `json:"responseTime"`
	FirstPaintMs         float64 `json:"firstPaint"`
	FirstContentfulPaint float64 `json:"firstContentfulPaint"`
	TransferSize         float64 `json:"transferSize"`
	EncodedBodySize      float64 `json:"encodedBodySize"`
	DecodedBodySize      float64 `json:"decodedBodySize"`
	TotalResources       int     `json:"totalResources"`
}

// SecurityReport is the rule-based security assessment of one page.
type SecurityReport struct {
	IsHTTPS                bool     `json:"isHttps"`
	MixedContent           bool     `json:"mixedContent"`
	MixedContentURLs       []string `json:"mixedContentUrls,omitempty"`
	MissingSecurityHeaders []string `json:"missingSecurityHeaders"`
	InsecureCookies        bool     `json:"insecureCookies"`
	CSP                    string   `json:"csp,omitempty"`
	Notes                  []string `json:"notes"`
}

// CrawledPage is the outcome of visiting one same-origin link during the
// internal crawl pass. A failed visit carries Error and Status 0 only.
type CrawledPage struct {
	URL         string   `json:"url"`
	LinkText    string   `json:"linkText"`
	Status      int      `json:"status"`
	StatusText  string   `json:"statusText,omitempty"`
	ContentType string   `json:"contentType,omitempty"`
	LoadTimeMs  int64    `json:"loadTimeMs,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	H1Tags      []string `json:"h1Tags,omitempty"`
	WordCount   int      `json:"wordCount,omitempty"`
	IsHTTPS     bool     `json:"isHttps,omitempty"`
	Screenshot  string   `json:"screenshot,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// PageAnalysisResult is the complete, immutable analysis of one page. It is
// assembled once and handed whole to the caller.
type PageAnalysisResult struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Headings    []string          `json:"headings"`
	Links       []Link            `json:"links"`
	Images      []Image           `json:"images"`
	MetaTags    map[string]string `json:"metaTags"`
	Screenshot  string            `json:"screenshot,omitempty"`

	WordCount          int            `json:"wordCount"`
	ResponseTimeMs     int64          `json:"responseTimeMs"`
	TextContent        string         `json:"textContent"`
	WordFrequency      map[string]int `json:"wordFrequency"`
	ReadingTimeMinutes float64        `json:"readingTimeMinutes"`
	ReadabilityScore   float64        `json:"readabilityScore"`
	Language           string         `json:"language"`
	SocialMediaLinks   []Link         `json:"socialMediaLinks"`
	PageSizeKb         float64        `json:"pageSizeKb"`
	RenderedHTML       string         `json:"renderedHtml"`

	NetworkResources []NetworkEvent    `json:"networkResources"`
	ResponseHeaders  map[string]string `json:"responseHeaders"`
	ConsoleLogs      []ConsoleEvent    `json:"consoleLogs"`
	SecurityReport   SecurityReport    `json:"securityReport"`

	Forms          []Form            `json:"forms"`
	Scripts        []Script          `json:"scripts"`
	Stylesheets    []Stylesheet      `json:"stylesheets"`
	Iframes        []Iframe          `json:"iframes"`
	InputFields    []InputField      `json:"inputFields"`
	Buttons        []Button          `json:"buttons"`
	Technologies   []string          `json:"technologies"`
	StructuredData []any             `json:"structuredData"`
	Cookies        []Cookie          `json:"cookies"`
	LocalStorage   map[string]string `json:"localStorage"`
	SessionStorage map[string]string `json:"sessionStorage"`

	PerformanceMetrics PerformanceSample `json:"performanceMetrics"`
	Viewport           Viewport          `json:"viewport"`
	CrawledLinks       []CrawledPage     `json:"crawledLinks"`
}

// ScrapeResponse is the success/failure envelope returned to the caller.
type ScrapeResponse struct {
	Success bool                `json:"success"`
	Data    *PageAnalysisResult `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}
