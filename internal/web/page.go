// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

// indexHTML is the single-page UI. It talks to /api/v1/profile and renders
// the response client-side, so the server stays a plain JSON API.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Compound Engine</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1c2733; }
  h1 { font-size: 1.4rem; }
  form { display: flex; gap: .5rem; margin-bottom: 1.5rem; }
  input[type=text] { flex: 1; padding: .45rem; font-size: 1rem; }
  select, button { padding: .45rem .8rem; font-size: 1rem; }
  table { border-collapse: collapse; width: 100%; margin: .6rem 0 1.2rem; }
  th, td { border: 1px solid #d4dbe2; padding: .35rem .55rem; text-align: left; font-size: .9rem; }
  th { background: #eef2f6; }
  .muted { color: #6b7885; font-size: .85rem; }
  .error { color: #a4262c; }
  .diag { color: #8a6d1a; font-size: .85rem; }
  .entity { display: inline-block; background: #e4edf7; border-radius: 3px; padding: .1rem .4rem; margin: .1rem; font-size: .85rem; }
  #summary { background: #f6f8fa; border-left: 3px solid #4a7bab; padding: .6rem .8rem; }
</style>
</head>
<body>
<h1>Compound Engine</h1>
<form id="search">
  <input type="text" id="query" placeholder="aspirin, an InChI key, or a SMILES string" required>
  <select id="input_type">
    <option value="name">Name</option>
    <option value="smiles">SMILES</option>
    <option value="inchikey">InChI Key</option>
  </select>
  <button type="submit">Fetch profile</button>
</form>
<p class="muted" id="session"></p>
<div id="result"></div>
<script>
const form = document.getElementById('search');
const result = document.getElementById('result');
const sessionLine = document.getElementById('session');

function esc(s) {
  return String(s ?? '').replace(/[&<>"]/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;'}[c]));
}

function num(v, digits) {
  return v === null || v === undefined ? 'N/A' : v.toFixed(digits);
}

function render(data) {
  const p = data.profile;
  let html = '<h2>' + esc(p.compound.name || p.query) + '</h2>';
  if (p.compound.cid) {
    html += '<table><tr><th>CID</th><th>Formula</th><th>Weight</th><th>SMILES</th><th>InChI Key</th><th>ChEMBL ID</th></tr>' +
      '<tr><td>' + p.compound.cid + '</td><td>' + esc(p.compound.formula) + '</td><td>' +
      num(p.compound.weight, 2) + '</td><td>' + esc(p.compound.smiles) + '</td><td>' +
      esc(p.compound.inchikey) + '</td><td>' + esc(p.chembl_id || 'N/A') + '</td></tr></table>';
  } else {
    html += '<p class="muted">No registry identity resolved.</p>';
  }
  if (data.summary) {
    html += '<p id="summary">' + esc(data.summary) + '</p>';
  }
  if (data.entities && data.entities.length) {
    html += '<p>' + data.entities.map(e =>
      '<span class="entity">' + esc(e.text) + ' · ' + esc(e.label) + '</span>').join(' ') + '</p>';
  }
  if (p.activities && p.activities.length) {
    html += '<table><tr><th>Target</th><th>Type</th><th>Value</th><th>Unit</th><th>pChEMBL</th><th>Evidence</th></tr>';
    for (const a of p.activities) {
      html += '<tr><td>' + esc(a.target) + '</td><td>' + esc(a.type) + '</td><td>' + num(a.value, 2) +
        '</td><td>' + esc(a.unit) + '</td><td>' + num(a.potency, 2) + '</td><td>' + esc(a.evidence) + '</td></tr>';
    }
    html += '</table>';
  } else {
    html += '<p class="muted">No bioactivity data found.</p>';
  }
  if (p.proteins && p.proteins.length) {
    html += '<table><tr><th>Accession</th><th>Target</th><th>Source</th></tr>';
    for (const pr of p.proteins) {
      html += '<tr><td>' + esc(pr.accession) + '</td><td>' + esc(pr.target) + '</td><td>' + esc(pr.source) + '</td></tr>';
    }
    html += '</table>';
  }
  for (const d of p.diagnostics || []) {
    html += '<p class="diag">&#9888; ' + esc(d) + '</p>';
  }
  result.innerHTML = html;
  sessionLine.textContent = 'Queries this session: ' + data.session.queries;
}

form.addEventListener('submit', async (ev) => {
  ev.preventDefault();
  result.innerHTML = '<p class="muted">Fetching&hellip;</p>';
  try {
    const resp = await fetch('/api/v1/profile', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({
        query: document.getElementById('query').value,
        input_type: document.getElementById('input_type').value,
      }),
    });
    const data = await resp.json();
    if (!resp.ok) {
      result.innerHTML = '<p class="error">' + esc(data.error || resp.statusText) + '</p>';
      return;
    }
    render(data);
  } catch (err) {
    result.innerHTML = '<p class="error">' + esc(err.message) + '</p>';
  }
});
</script>
</body>
</html>
`
