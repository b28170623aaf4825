package analysis

// In-page scripts used by the probes. Results come back as JSON through
// the driver facade and are picked apart with gjson, so the scripts keep
// their output shapes flat and snake_cased.

const readyStateScript = `document.readyState`

// performanceEntriesScript pulls navigation, resource and paint timing in
// one round trip.
const performanceEntriesScript = `(() => {
	const nav = performance.getEntriesByType('navigation')[0] || {};
	const resources = performance.getEntriesByType('resource');
	const paints = performance.getEntriesByType('paint');
	const fcp = paints.find(p => p.name === 'first-contentful-paint');
	return {
		load_time: nav.loadEventEnd || 0,
		dom_content_loaded: nav.domContentLoadedEventEnd || 0,
		ttfb: nav.responseStart || 0,
		first_contentful_paint: fcp ? fcp.startTime : 0,
		resource_count: resources.length,
		transfer_size: resources.reduce((sum, r) => sum + (r.transferSize || 0), 0),
		resource_durations: resources.map(r => r.duration),
	};
})()`

// webVitalsScript samples LCP and CLS through PerformanceObserver for one
// second, defaulting both to 0 when nothing is observed in the window.
const webVitalsScript = `new Promise(resolve => {
	let lcp = 0, cls = 0;
	try {
		new PerformanceObserver(list => {
			const entries = list.getEntries();
			if (entries.length) lcp = entries[entries.length - 1].startTime;
		}).observe({ type: 'largest-contentful-paint', buffered: true });
		new PerformanceObserver(list => {
			for (const entry of list.getEntries()) {
				if (!entry.hadRecentInput) cls += entry.value;
			}
		}).observe({ type: 'layout-shift', buffered: true });
	} catch (err) {
		// Observer types unsupported: resolve with zeros below.
	}
	setTimeout(() => resolve({ lcp: lcp, cls: cls }), 1000);
})`

// axeInjectScript loads the axe-core rule engine into the page. No-op when
// the engine is already present; rejects when the script cannot load.
const axeInjectScript = `new Promise((resolve, reject) => {
	if (window.axe) { resolve(true); return; }
	const s = document.createElement('script');
	s.src = 'https://cdn.jsdelivr.net/npm/axe-core@4.8.2/axe.min.js';
	s.onload = () => resolve(true);
	s.onerror = () => reject(new Error('failed to load axe-core'));
	document.head.appendChild(s);
})`

// axeRunScript invokes the engine and normalizes its node-style callback
// into a single object: results on success, {error} on engine failure.
const axeRunScript = `window.axe.run(document)
	.then(r => ({
		violations: r.violations.map(v => ({
			id: v.id,
			impact: v.impact || 'minor',
			description: v.description,
			help: v.help,
			nodes: v.nodes.length,
		})),
		passes: r.passes.length,
		incomplete: r.incomplete.length,
		inapplicable: r.inapplicable.length,
	}))
	.catch(e => ({ error: e.message || String(e) }))`

// layoutShiftScript collects buffered layout-shift entries over a short
// sampling window.
const layoutShiftScript = `new Promise(resolve => {
	const shifts = [];
	try {
		new PerformanceObserver(list => {
			for (const entry of list.getEntries()) {
				if (!entry.hadRecentInput) {
					shifts.push({ value: entry.value, start_time: entry.startTime });
				}
			}
		}).observe({ type: 'layout-shift', buffered: true });
	} catch (err) {
		// Unsupported: resolve with what we have.
	}
	setTimeout(() => resolve(shifts), 300);
})`
