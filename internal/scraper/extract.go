package scraper

import "github.com/Haggai-dev665/web-scrapper/backend/internal/model"

// ExtractedContent is the consolidated snapshot returned by one extraction
// round-trip. It is taken once, after render stabilization, entirely inside
// the browser's document context.
type ExtractedContent struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Headings       []string           `json:"headings"`
	Links          []model.Link       `json:"links"`
	Images         []model.Image      `json:"images"`
	MetaTags       map[string]string  `json:"metaTags"`
	TextContent    string             `json:"textContent"`
	Forms          []model.Form       `json:"forms"`
	Scripts        []model.Script     `json:"scripts"`
	Stylesheets    []model.Stylesheet `json:"stylesheets"`
	Iframes        []model.Iframe     `json:"iframes"`
	InputFields    []model.InputField `json:"inputFields"`
	Buttons        []model.Button     `json:"buttons"`
	Technologies   []string           `json:"technologies"`
	StructuredData []any              `json:"structuredData"`
	HTMLContent    string             `json:"htmlContent"`
	Viewport       model.Viewport     `json:"viewport"`
}

// crawlInfo is the reduced snapshot taken from crawled sub-pages.
type crawlInfo struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	H1          []string `json:"h1"`
	WordCount   int      `json:"wordCount"`
}

// extractionJS gathers the whole ExtractedContent in a single evaluation,
// minimizing protocol round-trips.
const extractionJS = `() => {
	const title = document.title || 'No title found';

	const metaDesc = document.querySelector('meta[name="description"]');
	const description = (metaDesc && metaDesc.getAttribute('content')) || 'No description found';

	const headings = [];
	for (let i = 1; i <= 6; i++) {
		document.querySelectorAll('h' + i).forEach(el => {
			const text = (el.textContent || '').trim();
			if (text) headings.push('H' + i + ': ' + text);
		});
	}

	const links = [];
	document.querySelectorAll('a[href]').forEach(el => {
		const href = el.href;
		const text = (el.textContent || '').trim() || href;
		const isExternal = !href.startsWith(window.location.origin) &&
			(href.startsWith('http://') || href.startsWith('https://'));
		links.push({ text: text, href: href, isExternal: isExternal });
	});

	const images = [];
	document.querySelectorAll('img').forEach(img => {
		images.push({
			alt: img.alt || '',
			src: img.src,
			width: img.width ? String(img.width) : '',
			height: img.height ? String(img.height) : ''
		});
	});

	const metaTags = {};
	document.querySelectorAll('meta').forEach(el => {
		const name = el.getAttribute('name') || el.getAttribute('property') || el.getAttribute('http-equiv');
		const content = el.getAttribute('content');
		if (name && content) metaTags[name] = content;
	});

	const textContent = document.body ? document.body.innerText : '';

	const forms = [];
	document.querySelectorAll('form').forEach(form => {
		const fields = [];
		form.querySelectorAll('input, select, textarea, button').forEach(field => {
			fields.push({
				type: field.type || field.tagName.toLowerCase(),
				name: field.name || '',
				id: field.id || '',
				placeholder: field.placeholder || '',
				required: field.required || false,
				value: field.value || ''
			});
		});
		forms.push({
			action: form.action || '',
			method: form.method || 'get',
			id: form.id || '',
			className: form.className || '',
			enctype: form.enctype || '',
			fields: fields,
			fieldCount: fields.length
		});
	});

	const scripts = [];
	document.querySelectorAll('script').forEach(script => {
		if (script.src) {
			scripts.push({
				type: 'external',
				src: script.src,
				async: script.async || false,
				defer: script.defer || false
			});
		} else if (script.textContent && script.textContent.trim()) {
			scripts.push({
				type: 'inline',
				content: script.textContent.substring(0, 500),
				length: script.textContent.length
			});
		}
	});

	const stylesheets = [];
	document.querySelectorAll('link[rel="stylesheet"]').forEach(link => {
		stylesheets.push({ type: 'external', href: link.href, media: link.media || 'all' });
	});
	document.querySelectorAll('style').forEach(style => {
		if (style.textContent && style.textContent.trim()) {
			stylesheets.push({
				type: 'inline',
				content: style.textContent.substring(0, 500),
				length: style.textContent.length
			});
		}
	});

	const iframes = [];
	document.querySelectorAll('iframe').forEach(iframe => {
		iframes.push({
			src: iframe.src || '',
			width: iframe.width || '',
			height: iframe.height || '',
			sandbox: iframe.sandbox ? iframe.sandbox.toString() : '',
			loading: iframe.loading || ''
		});
	});

	const inputFields = [];
	document.querySelectorAll('input').forEach(input => {
		inputFields.push({
			type: input.type || 'text',
			name: input.name || '',
			id: input.id || '',
			autocomplete: input.autocomplete || '',
			pattern: input.pattern || '',
			maxLength: input.maxLength > 0 ? input.maxLength : 0
		});
	});

	const buttons = [];
	document.querySelectorAll('button, input[type="button"], input[type="submit"]').forEach(btn => {
		buttons.push({
			text: (btn.textContent || '').trim() || btn.value || '',
			type: btn.type || '',
			id: btn.id || '',
			className: btn.className || ''
		});
	});

	const technologies = [];
	if (window.jQuery) technologies.push('jQuery');
	if (window.React) technologies.push('React');
	if (window.Vue) technologies.push('Vue.js');
	if (window.angular) technologies.push('Angular');
	if (document.querySelector('[data-react-root]') ||
		document.querySelector('[data-reactroot]')) technologies.push('React (detected)');
	if (document.querySelector('[ng-app], [data-ng-app]')) technologies.push('AngularJS');
	if (document.querySelector('[v-cloak]')) technologies.push('Vue.js (detected)');

	const structuredData = [];
	document.querySelectorAll('script[type="application/ld+json"]').forEach(script => {
		try {
			structuredData.push(JSON.parse(script.textContent));
		} catch (e) {}
	});

	return {
		title: title,
		description: description,
		headings: headings,
		links: links,
		images: images,
		metaTags: metaTags,
		textContent: textContent,
		forms: forms,
		scripts: scripts,
		stylesheets: stylesheets,
		iframes: iframes,
		inputFields: inputFields,
		buttons: buttons,
		technologies: technologies,
		structuredData: structuredData,
		htmlContent: document.documentElement.outerHTML,
		viewport: {
			width: window.innerWidth,
			height: window.innerHeight,
			devicePixelRatio: window.devicePixelRatio || 1
		}
	};
}`

// performanceJS reads the navigation-timing breakdown from the browser's
// Performance API.
const performanceJS = `() => {
	const perfData = window.performance;
	const navigation = (perfData && perfData.getEntriesByType && perfData.getEntriesByType('navigation')[0]) || {};
	const paint = (perfData && perfData.getEntriesByType && perfData.getEntriesByType('paint')) || [];
	const resources = (perfData && perfData.getEntriesByType && perfData.getEntriesByType('resource')) || [];

	const fp = paint.find(p => p.name === 'first-paint');
	const fcp = paint.find(p => p.name === 'first-contentful-paint');

	return {
		domContentLoaded: (navigation.domContentLoadedEventEnd - navigation.domContentLoadedEventStart) || 0,
		loadComplete: (navigation.loadEventEnd - navigation.loadEventStart) || 0,
		domInteractive: navigation.domInteractive || 0,
		domComplete: navigation.domComplete || 0,
		dnsLookup: (navigation.domainLookupEnd - navigation.domainLookupStart) || 0,
		tcpConnection: (navigation.connectEnd - navigation.connectStart) || 0,
		tlsNegotiation: navigation.secureConnectionStart > 0 ?
			(navigation.connectEnd - navigation.secureConnectionStart) : 0,
		requestTime: (navigation.responseStart - navigation.requestStart) || 0,
		responseTime: (navigation.responseEnd - navigation.responseStart) || 0,
		firstPaint: (fp && fp.startTime) || 0,
		firstContentfulPaint: (fcp && fcp.startTime) || 0,
		transferSize: navigation.transferSize || 0,
		encodedBodySize: navigation.encodedBodySize || 0,
		decodedBodySize: navigation.decodedBodySize || 0,
		totalResources: resources.length
	};
}`

// localStorageJS and sessionStorageJS snapshot web storage key by key.
const localStorageJS = `() => {
	const items = {};
	for (let i = 0; i < window.localStorage.length; i++) {
		const key = window.localStorage.key(i);
		if (key) items[key] = window.localStorage.getItem(key) || '';
	}
	return items;
}`

const sessionStorageJS = `() => {
	const items = {};
	for (let i = 0; i < window.sessionStorage.length; i++) {
		const key = window.sessionStorage.key(i);
		if (key) items[key] = window.sessionStorage.getItem(key) || '';
	}
	return items;
}`

// crawlInfoJS is the reduced extraction used on crawled sub-pages.
const crawlInfoJS = `() => {
	const h1 = [];
	document.querySelectorAll('h1').forEach(h => {
		const text = (h.textContent || '').trim();
		if (text) h1.push(text);
	});
	const body = document.body ? document.body.innerText : '';
	return {
		title: document.title || 'No title',
		description: (document.querySelector('meta[name="description"]') || {getAttribute: () => ''}).getAttribute('content') || '',
		h1: h1,
		wordCount: body.split(/\s+/).filter(w => w.length > 0).length
	};
}`
