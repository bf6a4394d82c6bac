package vis

// html takes the page title, the background colour and the replay items.
// Positions are fixed by the exported layout, so physics stays off and the
// replay only reveals what is already placed: characters first, then links.
var html = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
  html, body { margin: 0; height: 100%%; background: %s; }
  #graph { position: absolute; inset: 0; }
</style>
<script src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
</head>
<body>
<div id="graph"></div>
<script>
const items = [%s
];

const nodes = new vis.DataSet();
const edges = new vis.DataSet();
const network = new vis.Network(document.getElementById("graph"), { nodes, edges }, {
  physics: { enabled: false },
  interaction: { hover: true, tooltipDelay: 100 },
  edges: { smooth: false },
});

// One batch per animation frame, about sixty frames in all.
const batch = Math.max(1, Math.ceil(items.length / 60));
let next = 0;

function reveal() {
  const end = Math.min(next + batch, items.length);
  for (; next < end; next++) {
    const item = items[next];
    (item.type === "node" ? nodes : edges).add(item.data);
  }
  if (next < items.length) {
    requestAnimationFrame(reveal);
  } else {
    network.fit();
  }
}

reveal();
</script>
</body>
</html>`
