package rod

// Scripts run with `this` bound to the element they are evaluated on.
const (
	describeJS = `() => {
	const el = this;
	let label = "";
	if (el.id) {
		const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
		if (l) label = l.innerText || l.textContent || "";
	}
	if (!label) {
		const l = el.closest("label");
		if (l) label = l.innerText || l.textContent || "";
	}
	const style = window.getComputedStyle(el);
	const rect = el.getBoundingClientRect();
	const visible = style.display !== "none" && style.visibility !== "hidden" &&
		(rect.width > 0 || rect.height > 0);
	return {
		id: el.id || "",
		tag: el.tagName.toLowerCase(),
		type: el.getAttribute("type") || "",
		name: el.getAttribute("name") || "",
		placeholder: el.getAttribute("placeholder") || "",
		ariaLabel: el.getAttribute("aria-label") || "",
		labelText: label.trim(),
		visible: visible,
		disabled: !!el.disabled,
	};
}`

	// setValueJS goes through the native setter so framework-controlled
	// inputs see the change.
	setValueJS = `(value) => {
	const proto = this instanceof HTMLTextAreaElement
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, "value");
	if (desc && desc.set) {
		desc.set.call(this, value);
	} else {
		this.value = value;
	}
}`

	dispatchJS = `(name) => { this.dispatchEvent(new Event(name, { bubbles: true })); }`

	findByTextJS = `(tags, text) => {
	const norm = (s) => (s || "").replace(/\s+/g, " ").trim().toLowerCase();
	const needle = norm(text);
	for (const el of document.querySelectorAll(tags.join(","))) {
		let hay;
		if (el.tagName === "INPUT") {
			const t = (el.getAttribute("type") || "").toLowerCase();
			if (t !== "submit") continue;
			hay = el.value;
		} else {
			hay = el.innerText || el.textContent;
		}
		if (norm(hay).includes(needle)) return el;
	}
	return null;
}`
)
