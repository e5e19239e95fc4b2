package scene

const linkCSS = `
    .link { fill: none; stroke: rgba(255,255,255,0.15); stroke-width: 2; }
    .link.spouse, .link.sibling { stroke: rgba(168,85,247,0.4); stroke-dasharray: 6,6; }
    .link.sibling.half { stroke-dasharray: 14,6; }`

const pageCSS = `
    * { box-sizing: border-box; }
    html, body { margin: 0; height: 100%; overflow: hidden; background: #0f172a; color: #e2e8f0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }
    #viewport { position: absolute; inset: 0; cursor: grab; touch-action: none; }
    #viewport.dragging { cursor: grabbing; }
    #world { position: absolute; left: 0; top: 0; transform-origin: 0 0; }
    #links { position: absolute; left: -5000px; top: -5000px; overflow: visible; pointer-events: none; }
    .card { position: absolute; width: 160px; padding: 15px; transform: translate(-50%, -50%);
      background: rgba(30,41,59,0.92); border: 1px solid rgba(255,255,255,0.08); border-radius: 12px;
      text-align: center; transition: transform 0.2s ease, box-shadow 0.3s ease; user-select: none; }
    .card:hover { transform: translate(-50%, -50%) scale(1.08); z-index: 2; }
    .card.fly-highlight { transform: translate(-50%, -50%) scale(1.1); box-shadow: 0 0 0 3px #a855f7, 0 0 24px #a855f7; z-index: 3; }
    .photo { width: 75px; height: 75px; border-radius: 50%; object-fit: cover; display: block; margin: 0 auto 8px;
      border: 3px solid rgba(255,255,255,0.2); background: #334155; }
    .card.female .photo { border-color: rgba(236,72,153,0.5); }
    .card.male .photo { border-color: rgba(6,182,212,0.5); }
    .initials { display: flex; align-items: center; justify-content: center; font-size: 24px; font-weight: 600; color: #cbd5e1; }
    .name { font-size: 14px; font-weight: 600; line-height: 1.3; }
    .dates { font-size: 11px; color: #94a3b8; margin-top: 4px; }
    .deceased-mark { color: #94a3b8; margin-right: 3px; }
    .chrome { position: absolute; z-index: 10; background: rgba(15,23,42,0.9); border: 1px solid rgba(255,255,255,0.1);
      border-radius: 10px; padding: 8px; }
    #search-box { top: 16px; left: 16px; width: 280px; }
    #search { width: 100%; padding: 8px 10px; border-radius: 6px; border: 1px solid #334155; background: #1e293b; color: inherit; }
    #results { list-style: none; margin: 6px 0 0; padding: 0; max-height: 320px; overflow-y: auto; }
    #results li { padding: 6px 8px; border-radius: 6px; cursor: pointer; font-size: 13px; }
    #results li:hover { background: #334155; }
    #controls { bottom: 16px; right: 16px; display: flex; gap: 6px; }
    #controls button { width: 36px; height: 36px; border-radius: 6px; border: 0; background: #1e293b; color: inherit; font-size: 18px; cursor: pointer; }
    #title { top: 16px; right: 16px; font-size: 14px; color: #94a3b8; }`

const pageJS = `
  (function () {
    const cfg = JSON.parse(document.getElementById('kinfolk-config').textContent);
    const people = JSON.parse(document.getElementById('kinfolk-people').textContent) || [];
    const viewport = document.getElementById('viewport');
    const world = document.getElementById('world');
    const search = document.getElementById('search');
    const results = document.getElementById('results');
    let pan = { x: cfg.panX, y: cfg.panY }, zoom = cfg.zoom, drag = null, frame = 0, touched = false;

    function apply() {
      world.style.transform = 'translate(' + pan.x + 'px, ' + pan.y + 'px) scale(' + zoom + ')';
    }
    function cancel() {
      if (frame) { cancelAnimationFrame(frame); frame = 0; }
    }
    function centre() {
      pan = { x: viewport.clientWidth / 2, y: viewport.clientHeight / 2 };
    }
    function reset() {
      cancel(); centre(); zoom = 1; touched = false; apply();
    }
    function onChrome(el) {
      return !!(el && el.closest && el.closest('.chrome'));
    }
    function startDrag(x, y) {
      cancel(); touched = true;
      drag = { x: x - pan.x, y: y - pan.y };
      viewport.classList.add('dragging');
    }
    function moveDrag(x, y) {
      if (!drag) return;
      pan = { x: x - drag.x, y: y - drag.y };
      apply();
    }
    function endDrag() {
      drag = null;
      viewport.classList.remove('dragging');
    }

    viewport.addEventListener('mousedown', e => { if (!onChrome(e.target)) startDrag(e.clientX, e.clientY); });
    window.addEventListener('mousemove', e => moveDrag(e.clientX, e.clientY));
    window.addEventListener('mouseup', endDrag);
    viewport.addEventListener('touchstart', e => {
      if (e.touches.length === 1 && !onChrome(e.target)) startDrag(e.touches[0].clientX, e.touches[0].clientY);
    }, { passive: true });
    viewport.addEventListener('touchmove', e => {
      if (drag && e.touches.length === 1) { e.preventDefault(); moveDrag(e.touches[0].clientX, e.touches[0].clientY); }
    }, { passive: false });
    viewport.addEventListener('touchend', endDrag);

    document.getElementById('zoom-in').addEventListener('click', () => { cancel(); touched = true; zoom *= cfg.zoomStep; apply(); });
    document.getElementById('zoom-out').addEventListener('click', () => { cancel(); touched = true; zoom /= cfg.zoomStep; apply(); });
    document.getElementById('reset').addEventListener('click', reset);
    window.addEventListener('resize', () => { if (!touched) { centre(); apply(); } });

    function highlight(id) {
      const el = document.getElementById('person-' + id);
      if (!el) return;
      el.classList.add('fly-highlight');
      setTimeout(() => el.classList.remove('fly-highlight'), cfg.highlightMs);
    }
    function flyTo(id) {
      const p = people.find(n => n.id === id);
      if (!p) return;
      cancel(); touched = true;
      const from = { x: pan.x, y: pan.y, z: zoom };
      const to = {
        x: viewport.clientWidth / 2 - p.x * cfg.flyZoom,
        y: viewport.clientHeight / 2 - p.y * cfg.flyZoom,
        z: cfg.flyZoom,
      };
      const start = performance.now();
      function step(now) {
        const t = Math.min(Math.max((now - start) / cfg.flyMs, 0), 1);
        const e = 1 - Math.pow(1 - t, 3);
        pan = { x: from.x + (to.x - from.x) * e, y: from.y + (to.y - from.y) * e };
        zoom = from.z + (to.z - from.z) * e;
        apply();
        if (t < 1) { frame = requestAnimationFrame(step); } else { frame = 0; highlight(id); }
      }
      frame = requestAnimationFrame(step);
    }

    search.addEventListener('input', () => {
      results.innerHTML = '';
      const q = search.value.trim().toLowerCase();
      if ([...q].length < cfg.minSearch) return;
      people
        .filter(p => p.name.toLowerCase().includes(q) || p.full_name.toLowerCase().includes(q))
        .forEach(p => {
          const li = document.createElement('li');
          li.textContent = p.full_name;
          li.addEventListener('click', () => { results.innerHTML = ''; search.value = ''; flyTo(p.id); });
          results.appendChild(li);
        });
    });

    if (cfg.liveReload) {
      const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
      const sock = new WebSocket(proto + '//' + location.host + cfg.liveReload);
      sock.addEventListener('message', e => {
        const msg = JSON.parse(e.data);
        if (msg.type === 'reload') location.reload();
      });
    }

    window.kinfolk = { flyTo: flyTo, reset: reset, highlight: highlight };
    if (viewport.clientWidth !== cfg.width || viewport.clientHeight !== cfg.height) centre();
    apply();
    if (cfg.highlight) flyTo(cfg.highlight);
  })();`
