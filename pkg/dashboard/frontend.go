package dashboard

import "net/http"

func (d *Dashboard) serveFrontend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(frontendHTML))
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>CopyTrade Hub</title>
<style>
:root{--bg:#08090d;--sf:#0f1118;--sf2:#161923;--bd:#252a3a;--tx:#c8cdd8;--tx2:#8891a5;--tx3:#5a6278;--ac:#3b82f6;--gn:#10b981;--rd:#ef4444;--or:#f59e0b;--pr:#a855f7;--go:#eab308}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:'JetBrains Mono',monospace;background:var(--bg);color:var(--tx);min-height:100vh}
.app{max-width:1200px;margin:0 auto;padding:20px 24px}
.hdr{display:flex;justify-content:space-between;align-items:center;padding:16px 0;border-bottom:1px solid var(--bd);margin-bottom:24px}
.hdr h1{font-size:22px;font-weight:700;background:linear-gradient(135deg,var(--ac),var(--pr));-webkit-background-clip:text;-webkit-text-fill-color:transparent}
.live{font-size:10px;padding:3px 10px;border-radius:20px;background:rgba(16,185,129,.1);color:var(--gn);border:1px solid rgba(16,185,129,.2)}
.sts{display:grid;grid-template-columns:repeat(auto-fit,minmax(160px,1fr));gap:12px;margin-bottom:24px}
.st{background:var(--sf);border:1px solid var(--bd);border-radius:10px;padding:15px 16px}
.st .v{font-size:22px;font-weight:700;color:var(--ac)}.st .v.g{color:var(--gn)}.st .v.o{color:var(--or)}
.st .l{font-size:9px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;margin-top:5px}
.pn{background:var(--sf);border:1px solid var(--bd);border-radius:12px;margin-bottom:18px;overflow:hidden}
.pn-h{padding:13px 18px;border-bottom:1px solid var(--bd);background:var(--sf2);display:flex;justify-content:space-between;align-items:center}
.pn-h h2{font-size:13px;font-weight:600}
.pn-b{padding:14px 18px}
input{font-family:inherit;background:var(--sf2);border:1px solid var(--bd);color:var(--tx);padding:6px 10px;border-radius:6px;width:140px}
.bar{height:8px;background:var(--sf2);border-radius:4px;overflow:hidden;margin:10px 0}
.bar div{height:100%;background:linear-gradient(90deg,var(--ac),var(--pr))}
table{width:100%;border-collapse:collapse}
th{text-align:left;font-size:9px;color:var(--tx3);text-transform:uppercase;letter-spacing:.8px;padding:8px 10px;border-bottom:1px solid var(--bd)}
td{padding:8px 10px;border-bottom:1px solid rgba(37,42,58,.4);font-size:12px}
.addr{color:var(--go)}.pos{color:var(--gn)}.neg{color:var(--rd)}
.empty{color:var(--tx3);font-size:12px;padding:10px 0}
</style></head><body><div class="app">
<div class="hdr"><h1>CopyTrade Hub</h1><span class="live" id="online">0 online</span></div>
<div class="sts">
<div class="st"><div class="v" id="btc">-</div><div class="l">BTC / USD</div></div>
<div class="st"><div class="v g" id="final">-</div><div class="l">30d projected balance</div></div>
<div class="st"><div class="v o" id="ret">-</div><div class="l">30d return</div></div>
<div class="st"><div class="v" id="traders">-</div><div class="l">Tracked traders</div></div>
</div>
<div class="pn"><div class="pn-h"><h2>VIP Tier</h2><input id="bal" type="number" value="0" min="0"></div>
<div class="pn-b" id="vip"></div></div>
<div class="pn"><div class="pn-h"><h2>Leaderboard</h2></div>
<div class="pn-b"><table><thead><tr><th>#</th><th>Trader</th><th>PnL</th><th>Trades</th></tr></thead><tbody id="lb"></tbody></table></div></div>
<div class="pn"><div class="pn-h"><h2>Projected Growth</h2></div>
<div class="pn-b"><table><thead><tr><th>Day</th><th>Balance</th><th>Profit</th></tr></thead><tbody id="gr"></tbody></table></div></div>
</div>
<script>
const $=id=>document.getElementById(id);
const get=p=>fetch(p).then(r=>r.ok?r.json():Promise.reject(r.status));
const money=v=>Number(v).toLocaleString(undefined,{minimumFractionDigits:2,maximumFractionDigits:2});
function vip(){
 get('/api/vip?balance='+encodeURIComponent($('bal').value)).then(s=>{
  const next=s.max_tier?'Max tier reached':'Deposit $'+money(s.amount_needed)+' more for '+s.next_discount+'% off';
  $('vip').innerHTML='<div>Current discount: <b>'+s.current_discount+'%</b></div><div class="bar"><div style="width:'+s.progress_percent+'%"></div></div><div class="empty">'+next+'</div>';
 }).catch(()=>{$('vip').innerHTML='<div class="empty">unavailable</div>'});
}
function growth(){
 get('/api/growth').then(g=>{
  $('final').textContent='$'+money(g.summary.final_balance);
  $('ret').textContent=g.summary.return_pct.toFixed(2)+'%';
  $('gr').innerHTML=g.samples.map(s=>'<tr><td>'+s.day+'</td><td>$'+money(s.balance)+'</td><td class="'+(s.profit<0?'neg':'pos')+'">'+money(s.profit)+'</td></tr>').join('');
 }).catch(()=>{});
}
function board(){
 get('/api/leaderboard').then(rows=>{
  $('traders').textContent=rows.length;
  $('lb').innerHTML=rows.length?rows.map(t=>'<tr><td>'+t.rank+'</td><td class="addr">'+t.username+'</td><td class="'+(t.pnl<0?'neg':'pos')+'">'+money(t.pnl)+'</td><td>'+t.trades+'</td></tr>').join(''):'<tr><td colspan="4" class="empty">No trades yet</td></tr>';
 }).catch(()=>{$('lb').innerHTML='<tr><td colspan="4" class="empty">Leaderboard unavailable</td></tr>'});
}
function price(){
 get('/api/price').then(q=>{if(q.length)$('btc').textContent='$'+money(q[0].value)}).catch(()=>{});
}
function live(){
 const ws=new WebSocket((location.protocol==='https:'?'wss://':'ws://')+location.host+'/ws');
 ws.onmessage=e=>{const m=JSON.parse(e.data);if(m.event==='onlineUsers')$('online').textContent=m.count+' online'};
 ws.onclose=()=>setTimeout(live,3000);
}
$('bal').addEventListener('input',vip);
vip();growth();board();price();live();
setInterval(price,10000);setInterval(board,60000);
</script></body></html>`
